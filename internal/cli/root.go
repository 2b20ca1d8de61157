// Package cli wires the laneplan commands: plan import and management,
// diagram rendering, the interactive view, and the positions server.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/jspahr/laneplan/internal/repository"
	"github.com/jspahr/laneplan/internal/service"
)

// App holds the services CLI commands run against.
type App struct {
	Plans service.PlanService

	// Positions is the local position cache, shared by render, view,
	// positions and serve.
	Positions repository.PositionRepo

	Observer *service.LogObserver

	// IsInteractive reports whether stdin is a terminal; the view command
	// refuses to start without one.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "laneplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "laneplan",
		Short: "Interactive project timeline diagrams",
	}

	root.AddCommand(
		newImportCmd(app),
		newPlanCmd(app),
		newRenderCmd(app),
		newViewCmd(app),
		newPositionsCmd(app),
		newServeCmd(app),
	)

	return root
}
