package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jspahr/laneplan/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type DiagramRepo interface {
	Create(ctx context.Context, d *domain.Diagram) error
	GetByID(ctx context.Context, id string) (*domain.Diagram, error)
	List(ctx context.Context) ([]*domain.Diagram, error)
	Delete(ctx context.Context, id string) error
}

type WorkstreamRepo interface {
	// Create inserts the workstream and sets its assigned ID.
	Create(ctx context.Context, w *domain.Workstream) error
	ListByDiagram(ctx context.Context, diagramID string) ([]*domain.Workstream, error)
}

type MilestoneRepo interface {
	// Create inserts the milestone and sets its assigned ID.
	Create(ctx context.Context, m *domain.Milestone) error
	GetByID(ctx context.Context, id int64) (*domain.Milestone, error)
	ListByDiagram(ctx context.Context, diagramID string) ([]*domain.Milestone, error)
	UpdateDeadline(ctx context.Context, id int64, deadline time.Time) error
}

type ActivityRepo interface {
	// Create inserts the activity and its milestone links, and sets the
	// assigned ID.
	Create(ctx context.Context, a *domain.Activity) error
	ListByDiagram(ctx context.Context, diagramID string) ([]*domain.Activity, error)
}

type DependencyRepo interface {
	Create(ctx context.Context, d *domain.Dependency) error
	ListByDiagram(ctx context.Context, diagramID string) ([]domain.Dependency, error)
}

// PositionRepo stores layout positions keyed by (container, node type,
// node id). It backs both the local cache and the serve command.
type PositionRepo interface {
	Upsert(ctx context.Context, p *domain.Position) error
	List(ctx context.Context, containerID string, nodeType domain.NodeType) ([]*domain.Position, error)
	DeleteByContainer(ctx context.Context, containerID string) error
}
