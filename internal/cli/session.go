package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jspahr/laneplan/internal/diagram"
	"github.com/jspahr/laneplan/internal/domain"
	"github.com/jspahr/laneplan/internal/importer"
	"github.com/jspahr/laneplan/internal/position"
)

// loadPlan resolves a plan source: a YAML file path (viewed without
// importing) or the name/id of an imported diagram.
func loadPlan(ctx context.Context, app *App, source string) (*domain.FlatPlan, error) {
	if isPlanFile(source) {
		schema, err := importer.LoadPlanSchema(source)
		if err != nil {
			return nil, err
		}
		if errs := importer.ValidatePlanSchema(schema); len(errs) > 0 {
			return nil, fmt.Errorf("plan validation failed (%d errors), first: %v", len(errs), errs[0])
		}
		plan, err := importer.Flatten(schema)
		if err != nil {
			return nil, err
		}
		// Stable container id per file path, so positions stored by one
		// session are found by the next.
		plan.Diagram.ID = filePlanID(source)
		return plan, nil
	}

	id, err := resolveDiagramID(ctx, app, source)
	if err != nil {
		return nil, err
	}
	return app.Plans.GetPlan(ctx, id)
}

func isPlanFile(source string) bool {
	return strings.HasSuffix(source, ".yaml") || strings.HasSuffix(source, ".yml")
}

// filePlanID derives a deterministic diagram id from the plan file's
// absolute path. Flatten mints a fresh id per call, which would scatter
// stored positions across unreachable containers on every load.
func filePlanID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("laneplan://plan/"+abs)).String()
}

// newStore builds the position store for a plan: remote-backed when a
// server URL is given, local cache only otherwise.
func newStore(app *App, plan *domain.FlatPlan, serverURL string, cfg diagram.Config) *position.Store {
	var backend position.Backend
	if serverURL != "" {
		backend = position.NewHTTPBackend(serverURL)
	}
	var onError position.ErrorFunc
	if app.Observer != nil {
		onError = app.Observer.StoreErrors()
	}
	return position.NewStore(position.Config{
		ContainerID:   plan.Diagram.ID,
		MarginTop:     cfg.MarginTop,
		ContentHeight: cfg.ContentHeight(),
	}, backend, app.Positions, onError)
}

// buildPipeline assembles the layout pipeline: synthesized placements, the
// timeline scale, a laid-out engine and its drag controller.
func buildPipeline(app *App, plan *domain.FlatPlan, store *position.Store) (*diagram.Engine, *diagram.DragController, *diagram.ConnectionIndexer) {
	cfg := diagram.DefaultConfig()

	var obs diagram.SynthesisObserver
	if app.Observer != nil {
		obs = app.Observer
	}
	placements := diagram.Synthesize(plan, obs)
	timeline := diagram.NewTimelineIndex(plan.Milestones, cfg.ContentWidth(), time.Now())

	var source diagram.PositionSource
	var writer diagram.PositionWriter
	if store != nil {
		source = store
		writer = store
	}
	engine := diagram.NewEngine(cfg, plan, placements, timeline, source)
	engine.Layout()

	// The first draw of a duplicate with no stored record persists its
	// computed default, so later loads see a stable node.
	if store != nil {
		for _, p := range placements {
			if !p.IsDuplicate() {
				continue
			}
			if c, ok := engine.Arena().Get(p.Key()); ok {
				store.MaterializeDuplicate(diagram.PlacementNode(p), c.Y)
			}
		}
	}

	connections := diagram.NewConnectionIndexer(plan.Activities, plan.Dependencies)
	controller := diagram.NewDragController(engine, connections, writer)
	return engine, controller, connections
}
