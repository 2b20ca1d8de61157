package diagram

import (
	"errors"
	"fmt"
	"time"

	"github.com/jspahr/laneplan/internal/domain"
)

type DragState string

const (
	StateIdle               DragState = "idle"
	StateDraggingMilestone  DragState = "dragging_milestone"
	StateDraggingWorkstream DragState = "dragging_workstream"
)

var (
	// ErrDragActive is returned when a drag is started while another is in
	// progress; the host UI must prevent nested drags.
	ErrDragActive = errors.New("drag already in progress")
	// ErrNoDrag is returned when a move or end arrives with no active drag.
	ErrNoDrag = errors.New("no drag in progress")
)

// PositionNode identifies a node to the position store. Key is the arena
// key; NodeID is the wire id the upsert payload carries (the duplicate key
// for duplicate milestones, the decimal id otherwise).
type PositionNode struct {
	Type         domain.NodeType
	Key          string
	NodeID       string
	IsDuplicate  bool
	DuplicateKey string
	OriginalID   int64
}

// PlacementNode builds the position identity of a placement.
func PlacementNode(p *Placement) PositionNode {
	n := PositionNode{
		Type:   domain.NodeMilestone,
		Key:    p.Key(),
		NodeID: p.Key(),
	}
	if p.IsDuplicate() {
		n.IsDuplicate = true
		n.DuplicateKey = p.DuplicateKey
		n.OriginalID = p.OriginalMilestoneID
	}
	return n
}

// WorkstreamNode builds the position identity of a lane.
func WorkstreamNode(id int64) PositionNode {
	return PositionNode{
		Type:   domain.NodeWorkstream,
		Key:    WorkstreamKey(id),
		NodeID: fmt.Sprintf("%d", id),
	}
}

// PositionWriter accepts debounced position writes from drag commits.
type PositionWriter interface {
	EnqueueWrite(node PositionNode, absY float64)
}

// discardWrites is used when no store is attached (read-only views).
type discardWrites struct{}

func (discardWrites) EnqueueWrite(PositionNode, float64) {}

// MilestoneDragResult reports a committed milestone drag. The host decides
// what to do with a deadline change: persist it off the event loop and call
// RollbackDeadline if the write is refused.
type MilestoneDragResult struct {
	Placement *Placement
	Committed Coord
	PreDragX  float64

	// NewDeadline is the snapped marker date. DeadlineChanged is true only
	// for original placements whose deadline day actually moved.
	NewDeadline     time.Time
	DeadlineChanged bool

	Redraw ConnectionSet
}

// WorkstreamDragResult reports a committed lane drag.
type WorkstreamDragResult struct {
	WorkstreamID int64
	Center       float64
	Corrections  []Correction

	// RedrawActivities lists the lane's activities for the full redraw pass.
	RedrawActivities []int64
}

// DragController is the pointer-driven state machine mutating the arena.
// All methods run on the UI event loop; none of them block on I/O.
type DragController struct {
	engine      *Engine
	connections *ConnectionIndexer
	positions   PositionWriter

	state DragState

	// Milestone drag bookkeeping.
	active        *Placement
	pointerOrigin Coord
	coordOrigin   Coord

	// Workstream drag bookkeeping.
	activeWS     int64
	pointerYOrig float64
	centerOrig   float64
	centerLast   float64
}

func NewDragController(engine *Engine, connections *ConnectionIndexer, positions PositionWriter) *DragController {
	if positions == nil {
		positions = discardWrites{}
	}
	return &DragController{
		engine:      engine,
		connections: connections,
		positions:   positions,
		state:       StateIdle,
	}
}

func (c *DragController) State() DragState { return c.state }

// StartMilestoneDrag begins dragging the placement under the pointer.
func (c *DragController) StartMilestoneDrag(key string, pointerX, pointerY float64) error {
	if c.state != StateIdle {
		return ErrDragActive
	}
	p, ok := c.engine.PlacementByKey(key)
	if !ok {
		return fmt.Errorf("placement %q: %w", key, ErrNoSuchNode)
	}
	coord, ok := c.engine.Arena().Get(key)
	if !ok {
		return fmt.Errorf("placement %q has no coordinate: %w", key, ErrNoSuchNode)
	}
	c.state = StateDraggingMilestone
	c.active = p
	c.pointerOrigin = Coord{X: pointerX, Y: pointerY}
	c.coordOrigin = coord
	return nil
}

// MoveMilestone tracks the pointer: the candidate y is clamped into the
// placement's lane, read live in case the lane itself is being relaid.
// Returns the connections to redraw incrementally.
func (c *DragController) MoveMilestone(pointerX, pointerY float64) (ConnectionSet, error) {
	if c.state != StateDraggingMilestone {
		return ConnectionSet{}, ErrNoDrag
	}
	y := c.coordOrigin.Y + (pointerY - c.pointerOrigin.Y)
	y = c.engine.ClampToBand(c.active.WorkstreamID, y)
	c.engine.Arena().SetY(c.active.Key(), y)
	return c.connections.Touching(c.active.Milestone.ID), nil
}

// EndMilestoneDrag commits the drag: y clamped into the lane, x snapped to
// the nearest timeline marker, a debounced position write enqueued. The
// position write is independent of any deadline change, so a later deadline
// rollback never touches y.
func (c *DragController) EndMilestoneDrag(pointerX, pointerY float64) (MilestoneDragResult, error) {
	if c.state != StateDraggingMilestone {
		return MilestoneDragResult{}, ErrNoDrag
	}
	p := c.active
	c.state = StateIdle
	c.active = nil

	y := c.coordOrigin.Y + (pointerY - c.pointerOrigin.Y)
	y = c.engine.ClampToBand(p.WorkstreamID, y)

	candidateX := c.coordOrigin.X + (pointerX - c.pointerOrigin.X)
	marker, snappedX := c.engine.SnapX(candidateX)

	committed := Coord{X: snappedX, Y: y}
	c.engine.Arena().Set(p.Key(), committed)

	c.positions.EnqueueWrite(PlacementNode(p), y)

	changed := false
	if !p.IsDuplicate() && p.Milestone.Deadline != nil {
		changed = !sameDay(*p.Milestone.Deadline, marker)
	} else if !p.IsDuplicate() && p.Milestone.Deadline == nil {
		// A milestone without a deadline acquires one by being dropped on
		// a marker.
		changed = snappedX != c.engine.Config().NoDeadlineX
	}

	return MilestoneDragResult{
		Placement:       p,
		Committed:       committed,
		PreDragX:        c.coordOrigin.X,
		NewDeadline:     marker,
		DeadlineChanged: changed,
		Redraw:          c.connections.Touching(p.Milestone.ID),
	}, nil
}

// RollbackDeadline restores the pre-drag x after a refused deadline change.
// The y coordinate keeps the user's value. Returns the connections to
// recompute.
func (c *DragController) RollbackDeadline(res MilestoneDragResult) ConnectionSet {
	c.engine.Arena().SetX(res.Placement.Key(), res.PreDragX)
	return res.Redraw
}

// StartWorkstreamDrag begins dragging a lane.
func (c *DragController) StartWorkstreamDrag(workstreamID int64, pointerY float64) error {
	if c.state != StateIdle {
		return ErrDragActive
	}
	c.state = StateDraggingWorkstream
	c.activeWS = workstreamID
	c.pointerYOrig = pointerY
	c.centerOrig = c.engine.BandCenter(workstreamID)
	c.centerLast = c.centerOrig
	return nil
}

// MoveWorkstream moves the lane and cascades the same delta to every
// placement drawn in it, originals and duplicates alike. Returns the lane's
// activities for redraw.
func (c *DragController) MoveWorkstream(pointerY float64) ([]int64, error) {
	if c.state != StateDraggingWorkstream {
		return nil, ErrNoDrag
	}
	center := c.centerOrig + (pointerY - c.pointerYOrig)
	delta := center - c.centerLast
	c.centerLast = center

	c.engine.SetBandCenter(c.activeWS, center)
	for _, p := range c.engine.PlacementsIn(c.activeWS) {
		if coord, ok := c.engine.Arena().Get(p.Key()); ok {
			c.engine.Arena().SetY(p.Key(), coord.Y+delta)
		}
	}
	return c.connections.WorkstreamActivities(c.activeWS), nil
}

// EndWorkstreamDrag commits the lane move: the center is clamped to the
// configured minimum, a debounced write enqueued, and containment
// enforcement pulls any stray placements back inside the band.
func (c *DragController) EndWorkstreamDrag(pointerY float64) (WorkstreamDragResult, error) {
	if c.state != StateDraggingWorkstream {
		return WorkstreamDragResult{}, ErrNoDrag
	}
	ws := c.activeWS
	c.state = StateIdle
	c.activeWS = 0

	center := c.centerOrig + (pointerY - c.pointerYOrig)
	if center < c.engine.Config().MinBandCenter {
		center = c.engine.Config().MinBandCenter
	}
	delta := center - c.centerLast
	c.engine.SetBandCenter(ws, center)
	if delta != 0 {
		for _, p := range c.engine.PlacementsIn(ws) {
			if coord, ok := c.engine.Arena().Get(p.Key()); ok {
				c.engine.Arena().SetY(p.Key(), coord.Y+delta)
			}
		}
	}

	c.positions.EnqueueWrite(WorkstreamNode(ws), center)

	return WorkstreamDragResult{
		WorkstreamID:     ws,
		Center:           center,
		Corrections:      c.engine.EnforceContainment(ws),
		RedrawActivities: c.connections.WorkstreamActivities(ws),
	}, nil
}

// ErrNoSuchNode is returned for drags targeting an unknown node id.
var ErrNoSuchNode = errors.New("unknown diagram node")

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
