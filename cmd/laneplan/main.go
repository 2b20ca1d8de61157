package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jspahr/laneplan/internal/cli"
	"github.com/jspahr/laneplan/internal/db"
	"github.com/jspahr/laneplan/internal/repository"
	"github.com/jspahr/laneplan/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// DB path: env var or default ~/.laneplan/laneplan.db
	dbPath := os.Getenv("LANEPLAN_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".laneplan", "laneplan.db")
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	diagramRepo := repository.NewSQLiteDiagramRepo(database)
	workstreamRepo := repository.NewSQLiteWorkstreamRepo(database)
	milestoneRepo := repository.NewSQLiteMilestoneRepo(database)
	activityRepo := repository.NewSQLiteActivityRepo(database)
	depRepo := repository.NewSQLiteDependencyRepo(database)
	positionRepo := repository.NewSQLitePositionRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	// Event logging goes to stderr only when asked for; the TUI owns the
	// terminal otherwise.
	var logSink io.Writer
	if os.Getenv("LANEPLAN_LOG") != "" {
		logSink = os.Stderr
	}

	app := &cli.App{
		Plans: service.NewPlanService(
			diagramRepo, workstreamRepo, milestoneRepo, activityRepo, depRepo, uow),
		Positions: positionRepo,
		Observer:  service.NewLogObserver(logSink),
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	return cli.NewRootCmd(app).Execute()
}
