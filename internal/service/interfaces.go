package service

import (
	"context"
	"time"

	"github.com/jspahr/laneplan/internal/domain"
	"github.com/jspahr/laneplan/internal/importer"
)

// ImportResult holds the outcome of a plan import.
type ImportResult struct {
	Diagram         *domain.Diagram
	WorkstreamCount int
	MilestoneCount  int
	ActivityCount   int
	DependencyCount int
}

type PlanService interface {
	ImportPlan(ctx context.Context, filePath string) (*ImportResult, error)
	ImportPlanFromSchema(ctx context.Context, schema *importer.PlanSchema) (*ImportResult, error)
	GetPlan(ctx context.Context, diagramID string) (*domain.FlatPlan, error)
	ListDiagrams(ctx context.Context) ([]*domain.Diagram, error)
	DeleteDiagram(ctx context.Context, id string) error
	UpdateMilestoneDeadline(ctx context.Context, milestoneID int64, deadline time.Time) error
}
