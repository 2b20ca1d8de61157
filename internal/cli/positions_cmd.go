package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jspahr/laneplan/internal/diagram"
	"github.com/jspahr/laneplan/internal/domain"
)

func newPositionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Manage stored diagram positions",
	}

	cmd.AddCommand(newPositionsListCmd(app))
	cmd.AddCommand(newPositionsResetCmd(app))
	return cmd
}

func newPositionsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <diagram>",
		Short: "List stored positions for a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveDiagramID(ctx, app, args[0])
			if err != nil {
				return err
			}

			var records []*domain.Position
			for _, nt := range []domain.NodeType{domain.NodeMilestone, domain.NodeWorkstream} {
				rows, err := app.Positions.List(ctx, id, nt)
				if err != nil {
					return fmt.Errorf("listing %s positions: %w", nt, err)
				}
				records = append(records, rows...)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored positions.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tNODE\tREL Y\tDUPLICATE")
			for _, p := range records {
				dup := ""
				if p.IsDuplicate {
					dup = p.DuplicateKey
				}
				fmt.Fprintf(w, "%s\t%s\t%.3f\t%s\n", p.NodeType, p.NodeID, p.RelY, dup)
			}
			return w.Flush()
		},
	}
}

func newPositionsResetCmd(app *App) *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "reset <diagram>",
		Short: "Clear all stored positions for a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveDiagramID(ctx, app, args[0])
			if err != nil {
				return err
			}

			plan, err := app.Plans.GetPlan(ctx, id)
			if err != nil {
				return err
			}

			store := newStore(app, plan, server, diagram.DefaultConfig())
			defer store.Close()
			if err := store.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Positions reset for %q\n", plan.Diagram.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Positions server URL (local only when empty)")
	return cmd
}
