package diagram

import (
	"testing"
	"time"

	"github.com/jspahr/laneplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapPositions is a PositionSource backed by a plain map.
type mapPositions map[string]float64

func (m mapPositions) Lookup(key string) (float64, bool) {
	y, ok := m[key]
	return y, ok
}

func newTestEngine(t *testing.T, plan *domain.FlatPlan, positions PositionSource) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	placements := Synthesize(plan, nil)
	timeline := NewTimelineIndex(plan.Milestones, cfg.ContentWidth(), time.Now())
	e := NewEngine(cfg, plan, placements, timeline, positions)
	e.Layout()
	return e
}

func TestLayout_BandsSplitContentHeightEvenly(t *testing.T) {
	e := newTestEngine(t, launchPlan(), nil)
	cfg := e.Config()

	slot := cfg.ContentHeight() / 2
	assert.InDelta(t, cfg.MarginTop+0.5*slot, e.BandCenter(1), 1e-9)
	assert.InDelta(t, cfg.MarginTop+1.5*slot, e.BandCenter(2), 1e-9)
}

func TestLayout_StoredBandCenterWins(t *testing.T) {
	stored := mapPositions{WorkstreamKey(2): 510}
	e := newTestEngine(t, launchPlan(), stored)

	assert.Equal(t, 510.0, e.BandCenter(2))

	// Lane 1 had no stored center and keeps the computed split.
	cfg := e.Config()
	assert.InDelta(t, cfg.MarginTop+0.25*cfg.ContentHeight(), e.BandCenter(1), 1e-9)
}

func TestLayout_SoloPlacementSitsOnBandCenter(t *testing.T) {
	e := newTestEngine(t, launchPlan(), nil)

	c, ok := e.Arena().Get("3")
	require.True(t, ok)
	assert.InDelta(t, e.BandCenter(2), c.Y, 1e-9)
}

// sharedDeadlinePlan puts three milestones with the same deadline in one
// lane.
func sharedDeadlinePlan() *domain.FlatPlan {
	return &domain.FlatPlan{
		Diagram: domain.Diagram{ID: "d1", Name: "Shared"},
		Workstreams: []domain.Workstream{
			{ID: 1, DiagramID: "d1", Name: "Engineering", MilestoneIDs: []int64{1, 2, 3}},
		},
		Milestones: []domain.Milestone{
			{ID: 1, WorkstreamID: 1, Name: "A", Deadline: day(2026, 4, 1)},
			{ID: 2, WorkstreamID: 1, Name: "B", Deadline: day(2026, 4, 1), OrderIndex: 1},
			{ID: 3, WorkstreamID: 1, Name: "C", Deadline: day(2026, 4, 1), OrderIndex: 2},
		},
	}
}

func TestLayout_SameDeadlineSiblingsSymmetricAroundCenter(t *testing.T) {
	e := newTestEngine(t, sharedDeadlinePlan(), nil)
	center := e.BandCenter(1)
	spacing := e.GroupSpacing(3)

	var ys []float64
	for _, key := range []string{"1", "2", "3"} {
		c, ok := e.Arena().Get(key)
		require.True(t, ok)
		ys = append(ys, c.Y)
	}

	// Evenly spaced, increasing, centered on the band.
	assert.InDelta(t, center-spacing, ys[0], 1e-9)
	assert.InDelta(t, center, ys[1], 1e-9)
	assert.InDelta(t, center+spacing, ys[2], 1e-9)
	assert.InDelta(t, center, (ys[0]+ys[1]+ys[2])/3, 1e-9)
}

func TestGroupSpacing_CappedByNodeRadius(t *testing.T) {
	e := newTestEngine(t, launchPlan(), nil)
	cfg := e.Config()

	// Small groups hit the radius cap, crowded ones divide the band.
	assert.Equal(t, cfg.NodeRadius*1.5, e.GroupSpacing(2))
	assert.Equal(t, cfg.BandHeight/9, e.GroupSpacing(8))
}

func TestLayout_StoredSiblingOverride(t *testing.T) {
	plan := sharedDeadlinePlan()

	// First compute the defaults.
	base := newTestEngine(t, plan, nil)
	def, ok := base.Arena().Get("2")
	require.True(t, ok)
	spacing := base.GroupSpacing(3)

	// A stored y within half a spacing of the computed slot is treated as
	// stale and recomputed.
	near := mapPositions{"2": def.Y + spacing/4}
	e := newTestEngine(t, plan, near)
	c, _ := e.Arena().Get("2")
	assert.InDelta(t, def.Y, c.Y, 1e-9)

	// A stored y clearly away from the slot is a deliberate user move.
	far := mapPositions{"2": def.Y + spacing*2}
	e = newTestEngine(t, plan, far)
	c, _ = e.Arena().Get("2")
	assert.Equal(t, def.Y+spacing*2, c.Y)
}

func TestLayout_XFollowsDeadlineOrder(t *testing.T) {
	e := newTestEngine(t, launchPlan(), nil)

	beta, _ := e.Arena().Get("1")     // 2026-03-01
	announce, _ := e.Arena().Get("3") // 2026-05-01
	ga, _ := e.Arena().Get("2")       // 2026-05-15

	assert.Less(t, beta.X, announce.X)
	assert.Less(t, announce.X, ga.X)

	// The duplicate of GA carries the original's deadline x.
	dup, ok := e.Arena().Get("duplicate-2-3")
	require.True(t, ok)
	assert.Equal(t, ga.X, dup.X)
}

func TestLayout_NoDeadlineUsesFixedX(t *testing.T) {
	plan := launchPlan()
	plan.Milestones[0].Deadline = nil

	e := newTestEngine(t, plan, nil)
	c, ok := e.Arena().Get("1")
	require.True(t, ok)
	assert.Equal(t, e.Config().NoDeadlineX, c.X)
}

func TestSnapX_RoundTripsMarkers(t *testing.T) {
	e := newTestEngine(t, launchPlan(), nil)

	for _, m := range e.Timeline().Markers() {
		markerX := e.Config().MarginLeft + e.Timeline().X(m)
		got, snappedX := e.SnapX(markerX + 3)
		assert.Equal(t, m, got)
		assert.InDelta(t, markerX, snappedX, 1e-9)
	}
}

func TestClampToBand(t *testing.T) {
	e := newTestEngine(t, launchPlan(), nil)
	top, bottom := e.BandBounds(1)
	pad := e.Config().BandPadding

	assert.Equal(t, top+pad, e.ClampToBand(1, top-100))
	assert.Equal(t, bottom-pad, e.ClampToBand(1, bottom+100))
	mid := (top + bottom) / 2
	assert.Equal(t, mid, e.ClampToBand(1, mid))
}

func TestEnforceContainment(t *testing.T) {
	e := newTestEngine(t, launchPlan(), nil)

	// Nothing is out of bounds after a fresh layout.
	assert.Empty(t, e.EnforceContainment(1))

	// Push one placement far below its lane.
	_, bottom := e.BandBounds(1)
	e.Arena().SetY("1", bottom+200)

	corrections := e.EnforceContainment(1)
	require.Len(t, corrections, 1)
	assert.Equal(t, "1", corrections[0].Key)
	assert.Equal(t, bottom+200, corrections[0].From.Y)
	assert.Equal(t, bottom-e.Config().BandPadding, corrections[0].To.Y)

	c, _ := e.Arena().Get("1")
	assert.Equal(t, bottom-e.Config().BandPadding, c.Y)

	// A second pass is a no-op.
	assert.Empty(t, e.EnforceContainment(1))
}
