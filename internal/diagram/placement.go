package diagram

import (
	"fmt"

	"github.com/jspahr/laneplan/internal/domain"
)

type PlacementKind string

const (
	PlacementOriginal  PlacementKind = "original"
	PlacementDuplicate PlacementKind = "duplicate"
)

// Placement is one visual instance of a milestone in one workstream lane.
// Exactly one original placement exists per milestone; duplicates are
// synthesized wherever a dependency or activity crosses lanes, so the
// renderer can draw the edge as a short same-lane link next to a copy of the
// foreign milestone.
type Placement struct {
	Kind      PlacementKind
	Milestone domain.Milestone

	// WorkstreamID is the lane the placement is drawn in. For duplicates it
	// differs from Milestone.WorkstreamID.
	WorkstreamID int64

	// Duplicate identity; zero values for originals.
	DuplicateKey        string
	OriginalMilestoneID int64
	Cause               domain.DuplicateCause
}

// Key is the placement's identity in the coordinate arena and the position
// store: the duplicate key for duplicates, the decimal milestone id otherwise.
func (p *Placement) Key() string {
	if p.Kind == PlacementDuplicate {
		return p.DuplicateKey
	}
	return fmt.Sprintf("%d", p.Milestone.ID)
}

func (p *Placement) IsDuplicate() bool {
	return p.Kind == PlacementDuplicate
}

// WorkstreamKey is the arena/position key for a workstream lane.
func WorkstreamKey(id int64) string {
	return fmt.Sprintf("workstream-%d", id)
}

// DependencyDuplicateKey identifies the duplicate of source drawn in target's
// lane for a cross-lane dependency.
func DependencyDuplicateKey(sourceID, targetID int64) string {
	return fmt.Sprintf("duplicate-%d-%d", sourceID, targetID)
}

// ActivityDuplicateKey identifies the duplicate of a supported milestone
// drawn in an activity's lane.
func ActivityDuplicateKey(targetID, activityID int64) string {
	return fmt.Sprintf("activity-duplicate-%d-%d", targetID, activityID)
}

// SynthesisObserver receives notifications about plan edges that were skipped
// because they reference a missing milestone. Skips are non-fatal: the edge
// simply has nothing to draw.
type SynthesisObserver interface {
	SkippedEdge(cause domain.DuplicateCause, sourceID, targetID int64)
}

// NoopSynthesisObserver ignores all skips.
type NoopSynthesisObserver struct{}

func (NoopSynthesisObserver) SkippedEdge(domain.DuplicateCause, int64, int64) {}

// Synthesize expands the plan's milestones into placements: one original per
// milestone, plus a duplicate for every dependency or activity edge that
// crosses workstream boundaries. Duplicates are deduplicated by key, so
// running synthesis twice over the same plan yields the same set.
func Synthesize(plan *domain.FlatPlan, obs SynthesisObserver) []*Placement {
	if obs == nil {
		obs = NoopSynthesisObserver{}
	}
	byID := plan.MilestoneByID()

	placements := make([]*Placement, 0, len(plan.Milestones))
	seen := make(map[string]bool, len(plan.Milestones))

	for _, m := range plan.Milestones {
		p := &Placement{
			Kind:         PlacementOriginal,
			Milestone:    m,
			WorkstreamID: m.WorkstreamID,
		}
		if seen[p.Key()] {
			continue
		}
		seen[p.Key()] = true
		placements = append(placements, p)
	}

	// A cross-lane dependency duplicates its SOURCE into the target's lane:
	// the target then has a local predecessor to link to, and the renderer
	// draws a dotted line back to the true source.
	for _, dep := range plan.Dependencies {
		src, srcOK := byID[dep.SourceMilestoneID]
		tgt, tgtOK := byID[dep.TargetMilestoneID]
		if !srcOK || !tgtOK {
			obs.SkippedEdge(domain.CauseDependency, dep.SourceMilestoneID, dep.TargetMilestoneID)
			continue
		}
		if src.WorkstreamID == tgt.WorkstreamID {
			continue
		}
		key := DependencyDuplicateKey(src.ID, tgt.ID)
		if seen[key] {
			continue
		}
		seen[key] = true
		placements = append(placements, &Placement{
			Kind:                PlacementDuplicate,
			Milestone:           *src,
			WorkstreamID:        tgt.WorkstreamID,
			DuplicateKey:        key,
			OriginalMilestoneID: src.ID,
			Cause:               domain.CauseDependency,
		})
	}

	// A cross-lane supported milestone duplicates the TARGET into the
	// activity's lane.
	for _, act := range plan.Activities {
		for _, targetID := range act.SupportedMilestoneIDs {
			tgt, ok := byID[targetID]
			if !ok {
				obs.SkippedEdge(domain.CauseActivity, act.SourceMilestoneID, targetID)
				continue
			}
			if tgt.WorkstreamID == act.WorkstreamID {
				continue
			}
			key := ActivityDuplicateKey(tgt.ID, act.ID)
			if seen[key] {
				continue
			}
			seen[key] = true
			placements = append(placements, &Placement{
				Kind:                PlacementDuplicate,
				Milestone:           *tgt,
				WorkstreamID:        act.WorkstreamID,
				DuplicateKey:        key,
				OriginalMilestoneID: tgt.ID,
				Cause:               domain.CauseActivity,
			})
		}
	}

	return placements
}
