package domain

import "time"

// Diagram is the container a plan is rendered into. Its ID is the position
// store's container key.
type Diagram struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Workstream is one horizontal lane of the diagram. Business data is
// immutable after import; only the lane's vertical position is layout state,
// and that lives outside this struct.
type Workstream struct {
	ID           int64
	DiagramID    string
	Name         string
	Color        string
	OrderIndex   int
	MilestoneIDs []int64 // owned milestones, in display order
}

type Milestone struct {
	ID           int64
	WorkstreamID int64
	Name         string
	Deadline     *time.Time
	Status       MilestoneStatus
	OrderIndex   int
}

// Activity connects a source milestone to targets in the same lane and to
// supported milestones that may live in other lanes.
type Activity struct {
	ID                    int64
	WorkstreamID          int64
	SourceMilestoneID     int64
	TargetMilestoneIDs    []int64
	SupportedMilestoneIDs []int64
}

// Dependency is a directional edge: the source milestone blocks or feeds the
// target milestone.
type Dependency struct {
	SourceMilestoneID int64
	TargetMilestoneID int64
}
