package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage imported plans",
	}

	cmd.AddCommand(
		newPlanListCmd(app),
		newPlanShowCmd(app),
		newPlanRemoveCmd(app),
	)

	return cmd
}

func newPlanListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List imported plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			diagrams, err := app.Plans.ListDiagrams(context.Background())
			if err != nil {
				return err
			}
			if len(diagrams) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plans imported yet.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tIMPORTED")
			for _, d := range diagrams {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Name, d.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newPlanShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <diagram>",
		Short: "Show a plan's workstreams and milestones",
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

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", plan.Diagram.Name, plan.Diagram.ID)
			byWorkstream := make(map[int64][]string)
			for _, m := range plan.Milestones {
				deadline := "no deadline"
				if m.Deadline != nil {
					deadline = m.Deadline.Format("2006-01-02")
				}
				byWorkstream[m.WorkstreamID] = append(byWorkstream[m.WorkstreamID],
					fmt.Sprintf("  - %s  (%s, %s)", m.Name, deadline, m.Status))
			}
			for _, ws := range plan.Workstreams {
				fmt.Fprintf(out, "%s\n", ws.Name)
				for _, line := range byWorkstream[ws.ID] {
					fmt.Fprintln(out, line)
				}
			}
			fmt.Fprintf(out, "%d activities, %d dependencies\n",
				len(plan.Activities), len(plan.Dependencies))
			return nil
		},
	}
}

func newPlanRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <diagram>",
		Short: "Delete an imported plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveDiagramID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Plans.DeleteDiagram(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed plan %s\n", id)
			return nil
		},
	}
}
