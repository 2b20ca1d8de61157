package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jspahr/laneplan/internal/domain"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	styleLaneName = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	styleLaneEdge = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	styleMarker   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleStatus   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	styleNotStarted = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	styleInProgress = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	styleCompleted  = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
)

const (
	nodeGlyph      = "●"
	duplicateGlyph = "◌"
	markerGlyph    = "┆"
)

// contentRows is the diagram area height in terminal rows: everything above
// the status line and help footer.
func (m Model) contentRows() int {
	return m.height - 3
}

func (m Model) View() string {
	if m.confirm != nil {
		return m.confirm.View()
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(m.session.Engine.Plan().Diagram.Name))
	b.WriteString("\n")
	b.WriteString(m.renderCanvas())
	b.WriteString(styleStatus.Render(m.status))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderCanvas projects the pixel-space arena onto a character grid: one
// glyph per node, lane edges as horizontal rules, timeline markers as faint
// vertical ticks.
func (m Model) renderCanvas() string {
	cfg := m.session.Engine.Config()
	engine := m.session.Engine

	cols, rows := m.width, m.contentRows()-1
	if cols < 20 || rows < 4 {
		return "terminal too small\n"
	}

	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
		for j := range grid[i] {
			grid[i][j] = " "
		}
	}

	// Columns carry the pan offset and may fall off either edge; rows are
	// clamped so lane rules always land somewhere visible.
	toCell := func(px, py float64) (int, int) {
		col := int(px*float64(cols)/cfg.Width) + m.panX
		row := int(py * float64(rows) / cfg.Height)
		return col, clampInt(row, 0, rows-1)
	}

	// Timeline ticks.
	timeline := engine.Timeline()
	for _, marker := range timeline.Markers() {
		col, _ := toCell(cfg.MarginLeft+timeline.X(marker), 0)
		if col < 0 || col >= cols {
			continue
		}
		for row := 0; row < rows; row++ {
			grid[row][col] = styleMarker.Render(markerGlyph)
		}
		label := marker.Format("Jan 2")
		labelCol := col - len(label)/2
		for i, ch := range label {
			if c := labelCol + i; c >= 0 && c < cols {
				grid[0][c] = styleMarker.Render(string(ch))
			}
		}
	}

	// Lane edges and names.
	for _, ws := range engine.Plan().Workstreams {
		_, bottom := engine.BandBounds(ws.ID)
		_, edgeRow := toCell(0, bottom)
		for col := 0; col < cols; col++ {
			grid[edgeRow][col] = styleLaneEdge.Render("─")
		}

		// Lane names stay in the left gutter regardless of pan.
		_, nameRow := toCell(0, engine.BandCenter(ws.ID))
		name := ws.Name
		if len(name) > cols/4 {
			name = name[:cols/4]
		}
		for i, ch := range name {
			if i >= cols {
				break
			}
			grid[nameRow][i] = styleLaneName.Render(string(ch))
		}
	}

	// Nodes last, over everything else.
	for _, p := range engine.Placements() {
		c, ok := engine.Arena().Get(p.Key())
		if !ok {
			continue
		}
		col, row := toCell(c.X, c.Y)
		if col < 0 || col >= cols {
			continue
		}
		glyph := nodeGlyph
		if p.IsDuplicate() {
			glyph = duplicateGlyph
		}
		grid[row][col] = statusStyle(p.Milestone.Status).Render(glyph)
	}

	var b strings.Builder
	for _, line := range grid {
		b.WriteString(strings.Join(line, ""))
		b.WriteString("\n")
	}
	return b.String()
}

func statusStyle(s domain.MilestoneStatus) lipgloss.Style {
	switch s {
	case domain.MilestoneInProgress:
		return styleInProgress
	case domain.MilestoneCompleted:
		return styleCompleted
	default:
		return styleNotStarted
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
