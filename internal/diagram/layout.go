package diagram

import (
	"math"
	"time"

	"github.com/jspahr/laneplan/internal/domain"
)

// PositionSource exposes stored absolute-y overrides from the position
// store. The engine consults it for lane centers and user-adjusted nodes.
type PositionSource interface {
	Lookup(key string) (float64, bool)
}

// NoStoredPositions is a PositionSource with no overrides; layout falls back
// to computed defaults everywhere.
type NoStoredPositions struct{}

func (NoStoredPositions) Lookup(string) (float64, bool) { return 0, false }

// Engine computes and caches a coordinate for every placement: x from the
// timeline scale, y from the owning lane's band plus same-deadline spacing,
// overridden by stored positions where the user moved things.
type Engine struct {
	cfg        Config
	plan       *domain.FlatPlan
	placements []*Placement
	timeline   *TimelineIndex
	positions  PositionSource
	arena      *Arena
}

func NewEngine(cfg Config, plan *domain.FlatPlan, placements []*Placement, timeline *TimelineIndex, positions PositionSource) *Engine {
	if positions == nil {
		positions = NoStoredPositions{}
	}
	return &Engine{
		cfg:        cfg,
		plan:       plan,
		placements: placements,
		timeline:   timeline,
		positions:  positions,
		arena:      NewArena(),
	}
}

func (e *Engine) Config() Config           { return e.cfg }
func (e *Engine) Arena() *Arena            { return e.arena }
func (e *Engine) Timeline() *TimelineIndex { return e.timeline }
func (e *Engine) Placements() []*Placement { return e.placements }
func (e *Engine) Plan() *domain.FlatPlan   { return e.plan }

// PlacementByKey finds a placement by its arena key.
func (e *Engine) PlacementByKey(key string) (*Placement, bool) {
	for _, p := range e.placements {
		if p.Key() == key {
			return p, true
		}
	}
	return nil, false
}

// PlacementsIn returns every placement drawn in the given lane, originals
// and duplicates alike.
func (e *Engine) PlacementsIn(workstreamID int64) []*Placement {
	var out []*Placement
	for _, p := range e.placements {
		if p.WorkstreamID == workstreamID {
			out = append(out, p)
		}
	}
	return out
}

// Layout computes band centers and every placement coordinate into the
// arena. It is a full recompute; drags mutate the arena incrementally
// in between.
func (e *Engine) Layout() {
	e.layoutBands()

	for _, group := range e.deadlineGroups() {
		e.layoutGroup(group)
	}
}

// layoutBands assigns each workstream lane its center y: a stored position
// when one exists, otherwise an even vertical split of the content area.
func (e *Engine) layoutBands() {
	n := len(e.plan.Workstreams)
	if n == 0 {
		return
	}
	slot := e.cfg.ContentHeight() / float64(n)
	for i, ws := range e.plan.Workstreams {
		center := e.cfg.MarginTop + (float64(i)+0.5)*slot
		if stored, ok := e.positions.Lookup(WorkstreamKey(ws.ID)); ok {
			center = stored
		}
		e.arena.Set(WorkstreamKey(ws.ID), Coord{Y: center})
	}
}

// BandCenter returns the lane's current center y.
func (e *Engine) BandCenter(workstreamID int64) float64 {
	c, _ := e.arena.Get(WorkstreamKey(workstreamID))
	return c.Y
}

// SetBandCenter moves the lane's center y.
func (e *Engine) SetBandCenter(workstreamID int64, y float64) {
	e.arena.Set(WorkstreamKey(workstreamID), Coord{Y: y})
}

// BandBounds returns the lane's top and bottom edge.
func (e *Engine) BandBounds(workstreamID int64) (top, bottom float64) {
	center := e.BandCenter(workstreamID)
	return center - e.cfg.BandHeight/2, center + e.cfg.BandHeight/2
}

// ClampToBand clamps y into the lane's padded interior. Bounds are read live
// from the arena so a concurrently moving lane is honored.
func (e *Engine) ClampToBand(workstreamID int64, y float64) float64 {
	top, bottom := e.BandBounds(workstreamID)
	return clampFloat(y, top+e.cfg.BandPadding, bottom-e.cfg.BandPadding)
}

// deadlineGroup collects the placements sharing one (deadline day, lane)
// cell, in input order.
type deadlineGroup struct {
	workstreamID int64
	members      []*Placement
}

func (e *Engine) deadlineGroups() []*deadlineGroup {
	byKey := make(map[string]*deadlineGroup)
	var order []*deadlineGroup
	for _, p := range e.placements {
		day := ""
		if p.Milestone.Deadline != nil {
			day = p.Milestone.Deadline.Format("2006-01-02")
		}
		key := day + "|" + WorkstreamKey(p.WorkstreamID)
		g, ok := byKey[key]
		if !ok {
			g = &deadlineGroup{workstreamID: p.WorkstreamID}
			byKey[key] = g
			order = append(order, g)
		}
		g.members = append(g.members, p)
	}
	return order
}

// GroupSpacing is the vertical distance between same-deadline siblings in a
// lane holding n of them.
func (e *Engine) GroupSpacing(n int) float64 {
	return math.Min(e.cfg.BandHeight/float64(n+1), e.cfg.NodeRadius*1.5)
}

func (e *Engine) layoutGroup(g *deadlineGroup) {
	center := e.BandCenter(g.workstreamID)
	n := len(g.members)
	spacing := e.GroupSpacing(n)
	start := -float64(n-1) * spacing / 2

	for i, p := range g.members {
		x := e.placementX(p)
		y := center + start + float64(i)*spacing

		// A stored position that strays far from the computed slot was put
		// there by the user; keep it. Small deviations lose to the fresh
		// recompute so newly introduced siblings spread out cleanly.
		if stored, ok := e.positions.Lookup(p.Key()); ok {
			if math.Abs(stored-y) > spacing/2 {
				y = stored
			}
		}

		e.arena.Set(p.Key(), Coord{X: x, Y: y})
	}
}

func (e *Engine) placementX(p *Placement) float64 {
	if p.Milestone.Deadline == nil {
		return e.cfg.NoDeadlineX
	}
	return e.cfg.MarginLeft + e.timeline.X(*p.Milestone.Deadline)
}

// SnapX returns the absolute x of the timeline marker nearest to the given
// absolute x, along with the marker date.
func (e *Engine) SnapX(x float64) (time.Time, float64) {
	marker := e.timeline.NearestMarker(x - e.cfg.MarginLeft)
	return marker, e.cfg.MarginLeft + e.timeline.X(marker)
}

// Correction is one clamped node from a containment pass; From/To let the
// renderer animate the snap-back.
type Correction struct {
	Key  string
	From Coord
	To   Coord
}

// EnforceContainment clamps every out-of-band placement of the lane back
// inside its padded boundaries and returns the batch of corrections. Lanes
// whose placements are all in bounds produce no state churn.
func (e *Engine) EnforceContainment(workstreamID int64) []Correction {
	top, bottom := e.BandBounds(workstreamID)
	lo := top + e.cfg.BandPadding
	hi := bottom - e.cfg.BandPadding

	var corrections []Correction
	for _, p := range e.PlacementsIn(workstreamID) {
		c, ok := e.arena.Get(p.Key())
		if !ok {
			continue
		}
		if c.Y >= lo && c.Y <= hi {
			continue
		}
		fixed := Coord{X: c.X, Y: clampFloat(c.Y, lo, hi)}
		e.arena.Set(p.Key(), fixed)
		corrections = append(corrections, Correction{Key: p.Key(), From: c, To: fixed})
	}
	return corrections
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
