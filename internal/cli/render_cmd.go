package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jspahr/laneplan/internal/diagram"
	"github.com/jspahr/laneplan/internal/render"
)

func newRenderCmd(app *App) *cobra.Command {
	var output, server string

	cmd := &cobra.Command{
		Use:   "render <diagram|plan.yaml>",
		Short: "Render a plan to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			plan, err := loadPlan(ctx, app, args[0])
			if err != nil {
				return err
			}

			store := newStore(app, plan, server, diagram.DefaultConfig())
			defer store.Close()
			if err := store.Load(ctx); err != nil {
				return fmt.Errorf("loading positions: %w", err)
			}

			engine, _, _ := buildPipeline(app, plan, store)

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := render.NewRenderer(engine).Render(f); err != nil {
				return fmt.Errorf("rendering: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "laneplan.svg", "Output SVG path")
	cmd.Flags().StringVar(&server, "server", "", "Positions server URL (offline when empty)")
	return cmd
}
