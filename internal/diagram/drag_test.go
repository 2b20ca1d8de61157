package diagram

import (
	"testing"

	"github.com/jspahr/laneplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedWrite struct {
	node PositionNode
	absY float64
}

type captureWriter struct {
	writes []capturedWrite
}

func (w *captureWriter) EnqueueWrite(node PositionNode, absY float64) {
	w.writes = append(w.writes, capturedWrite{node: node, absY: absY})
}

func newTestController(t *testing.T, plan *domain.FlatPlan, writer PositionWriter) (*DragController, *Engine) {
	t.Helper()
	e := newTestEngine(t, plan, nil)
	ix := NewConnectionIndexer(plan.Activities, plan.Dependencies)
	return NewDragController(e, ix, writer), e
}

func TestDragController_StateMachine(t *testing.T) {
	c, _ := newTestController(t, launchPlan(), nil)
	assert.Equal(t, StateIdle, c.State())

	_, err := c.MoveMilestone(0, 0)
	assert.ErrorIs(t, err, ErrNoDrag)
	_, err = c.EndMilestoneDrag(0, 0)
	assert.ErrorIs(t, err, ErrNoDrag)
	_, err = c.MoveWorkstream(0)
	assert.ErrorIs(t, err, ErrNoDrag)

	require.NoError(t, c.StartMilestoneDrag("1", 100, 100))
	assert.Equal(t, StateDraggingMilestone, c.State())

	assert.ErrorIs(t, c.StartMilestoneDrag("2", 0, 0), ErrDragActive)
	assert.ErrorIs(t, c.StartWorkstreamDrag(1, 0), ErrDragActive)

	_, err = c.EndMilestoneDrag(100, 100)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, c.State())
}

func TestStartMilestoneDrag_UnknownKey(t *testing.T) {
	c, _ := newTestController(t, launchPlan(), nil)
	assert.ErrorIs(t, c.StartMilestoneDrag("nope", 0, 0), ErrNoSuchNode)
}

func TestMoveMilestone_TracksYWithinBand(t *testing.T) {
	c, e := newTestController(t, launchPlan(), nil)
	start, _ := e.Arena().Get("1")

	require.NoError(t, c.StartMilestoneDrag("1", 200, 300))

	redraw, err := c.MoveMilestone(200, 310)
	require.NoError(t, err)
	assert.False(t, redraw.Empty())

	c1, _ := e.Arena().Get("1")
	assert.Equal(t, start.Y+10, c1.Y)
	// x never moves during a drag; it snaps only on release.
	assert.Equal(t, start.X, c1.X)

	// Dragging far below the lane pins the node to the padded bottom edge.
	_, err = c.MoveMilestone(200, 3000)
	require.NoError(t, err)
	_, bottom := e.BandBounds(1)
	c1, _ = e.Arena().Get("1")
	assert.Equal(t, bottom-e.Config().BandPadding, c1.Y)
}

func TestEndMilestoneDrag_SnapsToNearestMarker(t *testing.T) {
	writer := &captureWriter{}
	c, e := newTestController(t, launchPlan(), writer)
	start, _ := e.Arena().Get("1") // Beta, 2026-03-01

	// Drag GA-wards: release closest to the 2026-05-15 marker.
	gaX := e.Config().MarginLeft + e.Timeline().X(*day(2026, 5, 15))
	require.NoError(t, c.StartMilestoneDrag("1", start.X, start.Y))
	res, err := c.EndMilestoneDrag(gaX+2, start.Y+20)
	require.NoError(t, err)

	assert.Equal(t, *day(2026, 5, 15), res.NewDeadline)
	assert.True(t, res.DeadlineChanged)
	assert.InDelta(t, gaX, res.Committed.X, 1e-9)
	assert.Equal(t, start.Y+20, res.Committed.Y)
	assert.Equal(t, start.X, res.PreDragX)
	assert.False(t, res.Redraw.Empty())

	// One debounced position write with the milestone's numeric identity.
	require.Len(t, writer.writes, 1)
	assert.Equal(t, domain.NodeMilestone, writer.writes[0].node.Type)
	assert.Equal(t, "1", writer.writes[0].node.NodeID)
	assert.False(t, writer.writes[0].node.IsDuplicate)
	assert.Equal(t, start.Y+20, writer.writes[0].absY)
}

func TestEndMilestoneDrag_SameMarkerKeepsDeadline(t *testing.T) {
	c, e := newTestController(t, launchPlan(), nil)
	start, _ := e.Arena().Get("1")

	require.NoError(t, c.StartMilestoneDrag("1", start.X, start.Y))
	res, err := c.EndMilestoneDrag(start.X+1, start.Y+5)
	require.NoError(t, err)

	assert.False(t, res.DeadlineChanged)
	assert.Equal(t, *day(2026, 3, 1), res.NewDeadline)
}

func TestEndMilestoneDrag_DuplicateNeverChangesDeadline(t *testing.T) {
	writer := &captureWriter{}
	c, e := newTestController(t, launchPlan(), writer)
	start, _ := e.Arena().Get("duplicate-2-3")

	require.NoError(t, c.StartMilestoneDrag("duplicate-2-3", start.X, start.Y))
	betaX := e.Config().MarginLeft + e.Timeline().X(*day(2026, 3, 1))
	res, err := c.EndMilestoneDrag(betaX, start.Y)
	require.NoError(t, err)

	assert.False(t, res.DeadlineChanged)

	require.Len(t, writer.writes, 1)
	node := writer.writes[0].node
	assert.True(t, node.IsDuplicate)
	assert.Equal(t, "duplicate-2-3", node.NodeID)
	assert.Equal(t, "duplicate-2-3", node.DuplicateKey)
	assert.Equal(t, int64(2), node.OriginalID)
}

func TestRollbackDeadline_RestoresXKeepsY(t *testing.T) {
	c, e := newTestController(t, launchPlan(), nil)
	start, _ := e.Arena().Get("1")

	gaX := e.Config().MarginLeft + e.Timeline().X(*day(2026, 5, 15))
	require.NoError(t, c.StartMilestoneDrag("1", start.X, start.Y))
	res, err := c.EndMilestoneDrag(gaX, start.Y+15)
	require.NoError(t, err)
	require.True(t, res.DeadlineChanged)

	c.RollbackDeadline(res)

	after, _ := e.Arena().Get("1")
	assert.Equal(t, start.X, after.X)
	// The vertical adjustment survives the rollback.
	assert.Equal(t, start.Y+15, after.Y)
}

func TestWorkstreamDrag_CascadesToLanePlacements(t *testing.T) {
	writer := &captureWriter{}
	c, e := newTestController(t, launchPlan(), writer)

	// Lane 1 holds Beta, GA and the activity duplicate of Announce.
	keys := []string{"1", "2", "activity-duplicate-3-1"}
	before := make(map[string]Coord)
	for _, k := range keys {
		coord, ok := e.Arena().Get(k)
		require.True(t, ok)
		before[k] = coord
	}
	centerBefore := e.BandCenter(1)

	require.NoError(t, c.StartWorkstreamDrag(1, 400))
	activities, err := c.MoveWorkstream(430)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, activities)

	assert.Equal(t, centerBefore+30, e.BandCenter(1))
	for _, k := range keys {
		coord, _ := e.Arena().Get(k)
		assert.Equal(t, before[k].Y+30, coord.Y, "key %s", k)
		assert.Equal(t, before[k].X, coord.X, "key %s", k)
	}

	res, err := c.EndWorkstreamDrag(430)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.WorkstreamID)
	assert.Equal(t, centerBefore+30, res.Center)
	assert.Equal(t, []int64{1}, res.RedrawActivities)
	// The whole lane moved together, so nothing needed clamping.
	assert.Empty(t, res.Corrections)

	require.Len(t, writer.writes, 1)
	node := writer.writes[0].node
	assert.Equal(t, domain.NodeWorkstream, node.Type)
	assert.Equal(t, "1", node.NodeID)
	assert.Equal(t, WorkstreamKey(1), node.Key)
	assert.Equal(t, res.Center, writer.writes[0].absY)
}

func TestEndWorkstreamDrag_ClampsCenterAndContainsNodes(t *testing.T) {
	c, e := newTestController(t, launchPlan(), nil)
	minCenter := e.Config().MinBandCenter

	require.NoError(t, c.StartWorkstreamDrag(1, 500))
	res, err := c.EndWorkstreamDrag(-2000)
	require.NoError(t, err)

	assert.Equal(t, minCenter, res.Center)
	assert.Equal(t, minCenter, e.BandCenter(1))

	// Every surviving placement sits inside the clamped band.
	top, bottom := e.BandBounds(1)
	pad := e.Config().BandPadding
	for _, p := range e.PlacementsIn(1) {
		coord, ok := e.Arena().Get(p.Key())
		require.True(t, ok)
		assert.GreaterOrEqual(t, coord.Y, top+pad)
		assert.LessOrEqual(t, coord.Y, bottom-pad)
	}
}
