package diagram

import "github.com/jspahr/laneplan/internal/domain"

// ConnectionSet names the connections touching a node: the activities and
// dependencies with it as an endpoint. Used for incremental redraw during a
// drag, so moving one node never forces a full connection pass.
type ConnectionSet struct {
	ActivityIDs  []int64
	Dependencies []domain.Dependency
}

func (s ConnectionSet) Empty() bool {
	return len(s.ActivityIDs) == 0 && len(s.Dependencies) == 0
}

// ConnectionIndexer answers "which connections touch this milestone" and
// "which activities live in this lane" from prebuilt inverted indexes.
type ConnectionIndexer struct {
	actsByMilestone  map[int64][]int64
	depsByMilestone  map[int64][]domain.Dependency
	actsByWorkstream map[int64][]int64
}

func NewConnectionIndexer(activities []domain.Activity, dependencies []domain.Dependency) *ConnectionIndexer {
	ix := &ConnectionIndexer{
		actsByMilestone:  make(map[int64][]int64),
		depsByMilestone:  make(map[int64][]domain.Dependency),
		actsByWorkstream: make(map[int64][]int64),
	}

	for _, a := range activities {
		ix.actsByWorkstream[a.WorkstreamID] = append(ix.actsByWorkstream[a.WorkstreamID], a.ID)

		touched := map[int64]bool{a.SourceMilestoneID: true}
		for _, id := range a.TargetMilestoneIDs {
			touched[id] = true
		}
		for _, id := range a.SupportedMilestoneIDs {
			touched[id] = true
		}
		for id := range touched {
			ix.actsByMilestone[id] = append(ix.actsByMilestone[id], a.ID)
		}
	}

	for _, d := range dependencies {
		ix.depsByMilestone[d.SourceMilestoneID] = append(ix.depsByMilestone[d.SourceMilestoneID], d)
		ix.depsByMilestone[d.TargetMilestoneID] = append(ix.depsByMilestone[d.TargetMilestoneID], d)
	}

	return ix
}

// Touching returns the connections with the given milestone as an endpoint.
// Duplicate placements look up their original milestone id.
func (ix *ConnectionIndexer) Touching(milestoneID int64) ConnectionSet {
	return ConnectionSet{
		ActivityIDs:  ix.actsByMilestone[milestoneID],
		Dependencies: ix.depsByMilestone[milestoneID],
	}
}

// WorkstreamActivities returns the ids of activities owned by the lane.
func (ix *ConnectionIndexer) WorkstreamActivities(workstreamID int64) []int64 {
	return ix.actsByWorkstream[workstreamID]
}
