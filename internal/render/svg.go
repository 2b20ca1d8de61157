// Package render turns a laid-out diagram into standalone SVG markup.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jspahr/laneplan/internal/diagram"
	"github.com/jspahr/laneplan/internal/domain"
)

const (
	backgroundColor = "#FFFFFF"
	gridColor       = "#E2E5EA"
	laneLineColor   = "#CBD0D8"
	labelColor      = "#3A3F47"
	mutedLabelColor = "#8A9099"
	activityColor   = "#6B7280"
	defaultLane     = "#5B8DEF"

	fontFamily = "Helvetica, Arial, sans-serif"
)

// statusColors maps milestone status to node fill.
var statusColors = map[domain.MilestoneStatus]string{
	domain.MilestoneNotStarted: "#9AA1AB",
	domain.MilestoneInProgress: "#3B82F6",
	domain.MilestoneCompleted:  "#22C55E",
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Renderer draws one engine's current arena state. Call after Layout (or
// after drags) so every placement has a coordinate.
type Renderer struct {
	engine *diagram.Engine
}

func NewRenderer(engine *diagram.Engine) *Renderer {
	return &Renderer{engine: engine}
}

// Render writes the complete SVG document.
func (r *Renderer) Render(w io.Writer) error {
	cfg := r.engine.Config()

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" xmlns="http://www.w3.org/2000/svg">
`, cfg.Width, cfg.Height, cfg.Width, cfg.Height))
	svg.WriteString(fmt.Sprintf(`<rect width="%.0f" height="%.0f" fill="%s"/>`+"\n",
		cfg.Width, cfg.Height, backgroundColor))

	r.drawTimeline(&svg)
	r.drawLanes(&svg)
	r.drawConnections(&svg)
	r.drawPlacements(&svg)

	svg.WriteString("</svg>\n")

	_, err := io.WriteString(w, svg.String())
	return err
}

func (r *Renderer) drawTimeline(svg *strings.Builder) {
	cfg := r.engine.Config()
	timeline := r.engine.Timeline()

	for _, marker := range timeline.Markers() {
		x := cfg.MarginLeft + timeline.X(marker)
		svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
			x, cfg.MarginTop, x, cfg.Height-cfg.MarginBottom, gridColor))
		svg.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="middle" font-family="%s" font-size="11" fill="%s">%s</text>`+"\n",
			x, cfg.MarginTop-10, fontFamily, mutedLabelColor, marker.Format("Jan 2")))
	}
}

func (r *Renderer) drawLanes(svg *strings.Builder) {
	cfg := r.engine.Config()

	for _, ws := range r.engine.Plan().Workstreams {
		top, bottom := r.engine.BandBounds(ws.ID)
		color := ws.Color
		if color == "" {
			color = defaultLane
		}

		svg.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="0.07"/>`+"\n",
			cfg.MarginLeft, top, cfg.ContentWidth(), bottom-top, color))
		svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`+"\n",
			cfg.MarginLeft, bottom, cfg.Width-cfg.MarginRight, bottom, laneLineColor))
		svg.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="end" font-family="%s" font-size="13" font-weight="bold" fill="%s">%s</text>`+"\n",
			cfg.MarginLeft-12, r.engine.BandCenter(ws.ID)+4, fontFamily, labelColor, xmlEscaper.Replace(ws.Name)))
	}
}

// drawConnections renders activity and dependency edges. Cross-lane edges
// end at the synthesized duplicate so every drawn line stays inside one
// lane; a faint dashed tether links the duplicate back to its original.
func (r *Renderer) drawConnections(svg *strings.Builder) {
	plan := r.engine.Plan()
	arena := r.engine.Arena()
	byID := plan.MilestoneByID()

	for _, act := range plan.Activities {
		src, ok := arena.Get(fmt.Sprintf("%d", act.SourceMilestoneID))
		if !ok {
			continue
		}
		for _, targetID := range act.TargetMilestoneIDs {
			if tgt, ok := arena.Get(fmt.Sprintf("%d", targetID)); ok {
				svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>`+"\n",
					src.X, src.Y, tgt.X, tgt.Y, activityColor))
			}
		}
		for _, supportedID := range act.SupportedMilestoneIDs {
			tgt, known := byID[supportedID]
			if !known {
				continue
			}
			key := fmt.Sprintf("%d", supportedID)
			if tgt.WorkstreamID != act.WorkstreamID {
				key = diagram.ActivityDuplicateKey(supportedID, act.ID)
			}
			if end, ok := arena.Get(key); ok {
				svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2" stroke-dasharray="6,3"/>`+"\n",
					src.X, src.Y, end.X, end.Y, activityColor))
			}
		}
	}

	for _, dep := range plan.Dependencies {
		src, srcKnown := byID[dep.SourceMilestoneID]
		tgt, tgtKnown := byID[dep.TargetMilestoneID]
		if !srcKnown || !tgtKnown {
			continue
		}

		srcKey := fmt.Sprintf("%d", dep.SourceMilestoneID)
		if src.WorkstreamID != tgt.WorkstreamID {
			srcKey = diagram.DependencyDuplicateKey(dep.SourceMilestoneID, dep.TargetMilestoneID)
		}
		from, okFrom := arena.Get(srcKey)
		to, okTo := arena.Get(fmt.Sprintf("%d", dep.TargetMilestoneID))
		if !okFrom || !okTo {
			continue
		}
		svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1.5" stroke-dasharray="3,3"/>`+"\n",
			from.X, from.Y, to.X, to.Y, mutedLabelColor))
	}

	// Tethers from duplicates back to their originals.
	for _, p := range r.engine.Placements() {
		if !p.IsDuplicate() {
			continue
		}
		dup, okDup := arena.Get(p.Key())
		orig, okOrig := arena.Get(fmt.Sprintf("%d", p.OriginalMilestoneID))
		if !okDup || !okOrig {
			continue
		}
		svg.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1" stroke-dasharray="2,4" stroke-opacity="0.5"/>`+"\n",
			dup.X, dup.Y, orig.X, orig.Y, mutedLabelColor))
	}
}

func (r *Renderer) drawPlacements(svg *strings.Builder) {
	cfg := r.engine.Config()
	arena := r.engine.Arena()

	for _, p := range r.engine.Placements() {
		c, ok := arena.Get(p.Key())
		if !ok {
			continue
		}
		fill := statusColors[p.Milestone.Status]
		if fill == "" {
			fill = statusColors[domain.MilestoneNotStarted]
		}

		if p.IsDuplicate() {
			svg.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.45" stroke="%s" stroke-width="1.5" stroke-dasharray="3,2"/>`+"\n",
				c.X, c.Y, cfg.NodeRadius, fill, fill))
		} else {
			svg.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n",
				c.X, c.Y, cfg.NodeRadius, fill))
		}

		svg.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" text-anchor="middle" font-family="%s" font-size="11" fill="%s">%s</text>`+"\n",
			c.X, c.Y+cfg.NodeRadius+14, fontFamily, labelColor, xmlEscaper.Replace(p.Milestone.Name)))
	}
}
