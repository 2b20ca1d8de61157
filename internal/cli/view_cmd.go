package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jspahr/laneplan/internal/diagram"
	"github.com/jspahr/laneplan/internal/tui"
)

func newViewCmd(app *App) *cobra.Command {
	var server, export string
	var watch bool

	cmd := &cobra.Command{
		Use:   "view <diagram|plan.yaml>",
		Short: "Open the interactive diagram view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && !app.IsInteractive() {
				return fmt.Errorf("view requires an interactive terminal")
			}
			ctx := context.Background()
			source := args[0]

			session, err := buildViewSession(ctx, app, source, server, export)
			if err != nil {
				return err
			}

			program := tea.NewProgram(tui.NewModel(session),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
			)

			if watch {
				if !isPlanFile(source) {
					return fmt.Errorf("--watch requires a plan file source")
				}
				stop, err := tui.WatchPlanFile(source, program)
				if err != nil {
					return fmt.Errorf("watching %s: %w", source, err)
				}
				defer stop()
			}

			final, err := program.Run()
			if m, ok := final.(tui.Model); ok {
				m.CloseSession()
			}
			return err
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Positions server URL (offline when empty)")
	cmd.Flags().StringVar(&export, "export", "laneplan.svg", "Path the export key writes to")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload when the plan file changes")
	return cmd
}

func buildViewSession(ctx context.Context, app *App, source, server, export string) (*tui.Session, error) {
	plan, err := loadPlan(ctx, app, source)
	if err != nil {
		return nil, err
	}

	store := newStore(app, plan, server, diagram.DefaultConfig())
	if err := store.Load(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("loading positions: %w", err)
	}

	engine, controller, connections := buildPipeline(app, plan, store)

	session := &tui.Session{
		Engine:      engine,
		Controller:  controller,
		Connections: connections,
		Positions:   store,
		ExportPath:  export,
		Close: func() {
			store.Flush()
			store.Close()
		},
	}

	// Deadline edits only persist for database-backed plans.
	if !isPlanFile(source) {
		session.Deadlines = app.Plans
	} else {
		session.Reload = func() (*tui.Session, error) {
			store.Flush()
			store.Close()
			return buildViewSession(ctx, app, source, server, export)
		}
	}
	return session, nil
}
