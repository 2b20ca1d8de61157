package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jspahr/laneplan/internal/db"
	"github.com/jspahr/laneplan/internal/domain"
	"github.com/jspahr/laneplan/internal/importer"
	"github.com/jspahr/laneplan/internal/repository"
)

type planService struct {
	diagrams   repository.DiagramRepo
	streams    repository.WorkstreamRepo
	milestones repository.MilestoneRepo
	activities repository.ActivityRepo
	deps       repository.DependencyRepo
	uow        db.UnitOfWork
}

func NewPlanService(
	diagrams repository.DiagramRepo,
	streams repository.WorkstreamRepo,
	milestones repository.MilestoneRepo,
	activities repository.ActivityRepo,
	deps repository.DependencyRepo,
	uow db.UnitOfWork,
) PlanService {
	return &planService{
		diagrams:   diagrams,
		streams:    streams,
		milestones: milestones,
		activities: activities,
		deps:       deps,
		uow:        uow,
	}
}

func (s *planService) ImportPlan(ctx context.Context, filePath string) (*ImportResult, error) {
	schema, err := importer.LoadPlanSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading plan file: %w", err)
	}
	return s.importSchema(ctx, schema)
}

func (s *planService) ImportPlanFromSchema(ctx context.Context, schema *importer.PlanSchema) (*ImportResult, error) {
	return s.importSchema(ctx, schema)
}

// importSchema persists a validated plan inside a single transaction so a
// failing insert never leaves a half-imported diagram behind. Refs resolve
// to the IDs SQLite hands back at insert time.
func (s *planService) importSchema(ctx context.Context, schema *importer.PlanSchema) (*ImportResult, error) {
	if errs := importer.ValidatePlanSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	result := &ImportResult{}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		diagrams := repository.NewSQLiteDiagramRepo(tx)
		streams := repository.NewSQLiteWorkstreamRepo(tx)
		milestones := repository.NewSQLiteMilestoneRepo(tx)
		activities := repository.NewSQLiteActivityRepo(tx)
		deps := repository.NewSQLiteDependencyRepo(tx)

		now := time.Now().UTC()
		diagram := &domain.Diagram{
			ID:        uuid.New().String(),
			Name:      schema.Plan.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := diagrams.Create(ctx, diagram); err != nil {
			return fmt.Errorf("creating diagram: %w", err)
		}

		milestoneIDs := make(map[string]int64)
		for i, wsImport := range schema.Workstreams {
			ws := &domain.Workstream{
				DiagramID:  diagram.ID,
				Name:       wsImport.Name,
				Color:      wsImport.Color,
				OrderIndex: i,
			}
			if err := streams.Create(ctx, ws); err != nil {
				return fmt.Errorf("creating workstream %q: %w", wsImport.Name, err)
			}
			result.WorkstreamCount++

			for j, msImport := range wsImport.Milestones {
				m := &domain.Milestone{
					WorkstreamID: ws.ID,
					Name:         msImport.Name,
					Status:       milestoneStatusOrDefault(msImport.Status),
					OrderIndex:   j,
				}
				if msImport.Deadline != "" {
					deadline, err := time.Parse("2006-01-02", msImport.Deadline)
					if err != nil {
						return fmt.Errorf("parsing deadline for %q: %w", msImport.Ref, err)
					}
					m.Deadline = &deadline
				}
				if err := milestones.Create(ctx, m); err != nil {
					return fmt.Errorf("creating milestone %q: %w", msImport.Name, err)
				}
				milestoneIDs[msImport.Ref] = m.ID
				result.MilestoneCount++
			}
		}

		// Second pass over workstreams: activities may point at milestones
		// in lanes declared later in the file.
		streamRows, err := streams.ListByDiagram(ctx, diagram.ID)
		if err != nil {
			return fmt.Errorf("listing workstreams: %w", err)
		}
		for i, wsImport := range schema.Workstreams {
			for _, actImport := range wsImport.Activities {
				a := &domain.Activity{
					WorkstreamID:      streamRows[i].ID,
					SourceMilestoneID: milestoneIDs[actImport.Source],
				}
				for _, ref := range actImport.Targets {
					a.TargetMilestoneIDs = append(a.TargetMilestoneIDs, milestoneIDs[ref])
				}
				for _, ref := range actImport.Supports {
					a.SupportedMilestoneIDs = append(a.SupportedMilestoneIDs, milestoneIDs[ref])
				}
				if err := activities.Create(ctx, a); err != nil {
					return fmt.Errorf("creating activity from %q: %w", actImport.Source, err)
				}
				result.ActivityCount++
			}
		}

		for _, depImport := range schema.Dependencies {
			dep := &domain.Dependency{
				SourceMilestoneID: milestoneIDs[depImport.Source],
				TargetMilestoneID: milestoneIDs[depImport.Target],
			}
			if err := deps.Create(ctx, dep); err != nil {
				return fmt.Errorf("creating dependency %s -> %s: %w", depImport.Source, depImport.Target, err)
			}
			result.DependencyCount++
		}

		result.Diagram = diagram
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *planService) GetPlan(ctx context.Context, diagramID string) (*domain.FlatPlan, error) {
	diagram, err := s.diagrams.GetByID(ctx, diagramID)
	if err != nil {
		return nil, err
	}
	streams, err := s.streams.ListByDiagram(ctx, diagramID)
	if err != nil {
		return nil, fmt.Errorf("listing workstreams: %w", err)
	}
	milestones, err := s.milestones.ListByDiagram(ctx, diagramID)
	if err != nil {
		return nil, fmt.Errorf("listing milestones: %w", err)
	}
	activities, err := s.activities.ListByDiagram(ctx, diagramID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	deps, err := s.deps.ListByDiagram(ctx, diagramID)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies: %w", err)
	}
	plan := &domain.FlatPlan{
		Diagram:      *diagram,
		Dependencies: deps,
	}
	for _, ws := range streams {
		plan.Workstreams = append(plan.Workstreams, *ws)
	}
	for _, m := range milestones {
		plan.Milestones = append(plan.Milestones, *m)
	}
	for _, a := range activities {
		plan.Activities = append(plan.Activities, *a)
	}
	return plan, nil
}

func (s *planService) ListDiagrams(ctx context.Context) ([]*domain.Diagram, error) {
	return s.diagrams.List(ctx)
}

func (s *planService) DeleteDiagram(ctx context.Context, id string) error {
	return s.diagrams.Delete(ctx, id)
}

func (s *planService) UpdateMilestoneDeadline(ctx context.Context, milestoneID int64, deadline time.Time) error {
	return s.milestones.UpdateDeadline(ctx, milestoneID, deadline)
}

func milestoneStatusOrDefault(raw string) domain.MilestoneStatus {
	if raw == "" {
		return domain.MilestoneNotStarted
	}
	return domain.MilestoneStatus(raw)
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("plan validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
