package domain

type MilestoneStatus string

const (
	MilestoneNotStarted MilestoneStatus = "not_started"
	MilestoneInProgress MilestoneStatus = "in_progress"
	MilestoneCompleted  MilestoneStatus = "completed"
)

// ValidMilestoneStatuses is the canonical set of accepted status strings.
var ValidMilestoneStatuses = map[string]bool{
	"not_started": true, "in_progress": true, "completed": true,
}

// NodeType distinguishes the two kinds of positionable diagram nodes.
type NodeType string

const (
	NodeMilestone  NodeType = "milestone"
	NodeWorkstream NodeType = "workstream"
)

// DuplicateCause records why a duplicate placement was synthesized.
type DuplicateCause string

const (
	CauseDependency DuplicateCause = "dependency"
	CauseActivity   DuplicateCause = "activity"
)
