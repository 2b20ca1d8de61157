package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/jspahr/laneplan/internal/domain"
)

// Diagram options
type DiagramOption func(*domain.Diagram)

func WithDiagramID(id string) DiagramOption {
	return func(d *domain.Diagram) {
		d.ID = id
	}
}

func NewTestDiagram(name string, opts ...DiagramOption) *domain.Diagram {
	now := time.Now().UTC()
	d := &domain.Diagram{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Workstream options
type WorkstreamOption func(*domain.Workstream)

func WithColor(c string) WorkstreamOption {
	return func(w *domain.Workstream) {
		w.Color = c
	}
}

func WithWorkstreamOrder(i int) WorkstreamOption {
	return func(w *domain.Workstream) {
		w.OrderIndex = i
	}
}

func NewTestWorkstream(diagramID, name string, opts ...WorkstreamOption) *domain.Workstream {
	w := &domain.Workstream{
		DiagramID: diagramID,
		Name:      name,
		Color:     "#4c78a8",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Milestone options
type MilestoneOption func(*domain.Milestone)

func WithDeadline(d time.Time) MilestoneOption {
	return func(m *domain.Milestone) {
		m.Deadline = &d
	}
}

func WithStatus(s domain.MilestoneStatus) MilestoneOption {
	return func(m *domain.Milestone) {
		m.Status = s
	}
}

func WithMilestoneOrder(i int) MilestoneOption {
	return func(m *domain.Milestone) {
		m.OrderIndex = i
	}
}

func NewTestMilestone(workstreamID int64, name string, opts ...MilestoneOption) *domain.Milestone {
	m := &domain.Milestone{
		WorkstreamID: workstreamID,
		Name:         name,
		Status:       domain.MilestoneNotStarted,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Date builds a UTC midnight date for deadline fixtures.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
