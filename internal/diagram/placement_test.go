package diagram

import (
	"testing"
	"time"

	"github.com/jspahr/laneplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) *time.Time {
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// launchPlan builds a two-lane plan with one cross-lane dependency and one
// cross-lane supported milestone, so synthesis produces one duplicate of
// each cause.
func launchPlan() *domain.FlatPlan {
	return &domain.FlatPlan{
		Diagram: domain.Diagram{ID: "d1", Name: "Launch"},
		Workstreams: []domain.Workstream{
			{ID: 1, DiagramID: "d1", Name: "Engineering", OrderIndex: 0, MilestoneIDs: []int64{1, 2}},
			{ID: 2, DiagramID: "d1", Name: "Marketing", OrderIndex: 1, MilestoneIDs: []int64{3}},
		},
		Milestones: []domain.Milestone{
			{ID: 1, WorkstreamID: 1, Name: "Beta", Deadline: day(2026, 3, 1), Status: domain.MilestoneInProgress},
			{ID: 2, WorkstreamID: 1, Name: "GA", Deadline: day(2026, 5, 15), Status: domain.MilestoneNotStarted, OrderIndex: 1},
			{ID: 3, WorkstreamID: 2, Name: "Announce", Deadline: day(2026, 5, 1), Status: domain.MilestoneNotStarted},
		},
		Activities: []domain.Activity{
			{ID: 1, WorkstreamID: 1, SourceMilestoneID: 1, TargetMilestoneIDs: []int64{2}, SupportedMilestoneIDs: []int64{3}},
		},
		Dependencies: []domain.Dependency{
			{SourceMilestoneID: 2, TargetMilestoneID: 3},
		},
	}
}

type recordingObserver struct {
	skips []string
}

func (o *recordingObserver) SkippedEdge(cause domain.DuplicateCause, sourceID, targetID int64) {
	o.skips = append(o.skips, string(cause))
}

func placementKeys(placements []*Placement) []string {
	keys := make([]string, len(placements))
	for i, p := range placements {
		keys[i] = p.Key()
	}
	return keys
}

func TestSynthesize_OriginalsAndDuplicates(t *testing.T) {
	placements := Synthesize(launchPlan(), nil)

	assert.ElementsMatch(t,
		[]string{"1", "2", "3", "duplicate-2-3", "activity-duplicate-3-1"},
		placementKeys(placements))

	byKey := make(map[string]*Placement)
	for _, p := range placements {
		byKey[p.Key()] = p
	}

	// The dependency duplicates its source (GA) into the target's lane.
	depDup := byKey["duplicate-2-3"]
	require.NotNil(t, depDup)
	assert.Equal(t, PlacementDuplicate, depDup.Kind)
	assert.Equal(t, int64(2), depDup.OriginalMilestoneID)
	assert.Equal(t, int64(2), depDup.WorkstreamID)
	assert.Equal(t, domain.CauseDependency, depDup.Cause)
	assert.Equal(t, "GA", depDup.Milestone.Name)

	// The supported milestone duplicates the target (Announce) into the
	// activity's lane.
	actDup := byKey["activity-duplicate-3-1"]
	require.NotNil(t, actDup)
	assert.Equal(t, int64(3), actDup.OriginalMilestoneID)
	assert.Equal(t, int64(1), actDup.WorkstreamID)
	assert.Equal(t, domain.CauseActivity, actDup.Cause)

	// Originals stay in their own lanes.
	assert.Equal(t, PlacementOriginal, byKey["2"].Kind)
	assert.Equal(t, int64(1), byKey["2"].WorkstreamID)
}

func TestSynthesize_SameLaneEdgesProduceNoDuplicates(t *testing.T) {
	plan := launchPlan()
	// Pull Announce into lane 1: no edge crosses lanes any more.
	plan.Milestones[2].WorkstreamID = 1
	plan.Workstreams[0].MilestoneIDs = []int64{1, 2, 3}
	plan.Workstreams[1].MilestoneIDs = nil

	placements := Synthesize(plan, nil)
	assert.ElementsMatch(t, []string{"1", "2", "3"}, placementKeys(placements))
}

func TestSynthesize_Idempotent(t *testing.T) {
	plan := launchPlan()
	first := placementKeys(Synthesize(plan, nil))
	second := placementKeys(Synthesize(plan, nil))
	assert.Equal(t, first, second)
}

func TestSynthesize_RepeatedEdgeDeduplicated(t *testing.T) {
	plan := launchPlan()
	plan.Dependencies = append(plan.Dependencies, plan.Dependencies[0])

	placements := Synthesize(plan, nil)
	assert.ElementsMatch(t,
		[]string{"1", "2", "3", "duplicate-2-3", "activity-duplicate-3-1"},
		placementKeys(placements))
}

func TestSynthesize_DanglingRefsSkippedWithObserver(t *testing.T) {
	plan := launchPlan()
	plan.Dependencies = append(plan.Dependencies, domain.Dependency{SourceMilestoneID: 99, TargetMilestoneID: 3})
	plan.Activities[0].SupportedMilestoneIDs = append(plan.Activities[0].SupportedMilestoneIDs, 77)

	obs := &recordingObserver{}
	placements := Synthesize(plan, obs)

	assert.ElementsMatch(t,
		[]string{"1", "2", "3", "duplicate-2-3", "activity-duplicate-3-1"},
		placementKeys(placements))
	assert.ElementsMatch(t, []string{"dependency", "activity"}, obs.skips)
}

func TestPlacementKeys(t *testing.T) {
	assert.Equal(t, "workstream-7", WorkstreamKey(7))
	assert.Equal(t, "duplicate-2-3", DependencyDuplicateKey(2, 3))
	assert.Equal(t, "activity-duplicate-3-1", ActivityDuplicateKey(3, 1))
}
