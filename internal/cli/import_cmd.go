package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <plan.yaml>",
		Short: "Import a plan file into the local database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Plans.ImportPlan(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"Imported %q (%s)\n  %d workstreams, %d milestones, %d activities, %d dependencies\n",
				result.Diagram.Name, result.Diagram.ID,
				result.WorkstreamCount, result.MilestoneCount,
				result.ActivityCount, result.DependencyCount)
			return nil
		},
	}
}
