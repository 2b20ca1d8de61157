// Package tui is the interactive diagram view: lanes and milestones drawn
// into the terminal, drag-editable with the mouse.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/jspahr/laneplan/internal/diagram"
	"github.com/jspahr/laneplan/internal/render"
)

// DeadlineSaver persists a deadline change committed by a milestone drag.
type DeadlineSaver interface {
	UpdateMilestoneDeadline(ctx context.Context, milestoneID int64, deadline time.Time) error
}

// PositionResetter clears all stored positions for the diagram.
type PositionResetter interface {
	Reset(ctx context.Context) error
}

// Session bundles everything one interactive diagram needs. Deadlines and
// Positions may be nil: file-backed views have no database to write
// deadlines to, offline views have no store to reset.
type Session struct {
	Engine      *diagram.Engine
	Controller  *diagram.DragController
	Connections *diagram.ConnectionIndexer
	Deadlines   DeadlineSaver
	Positions   PositionResetter

	// Reload rebuilds the session from its source; wired by the plan file
	// watcher. Nil for database-backed views.
	Reload func() (*Session, error)

	// ExportPath is where the export key writes the SVG.
	ExportPath string

	// Close flushes and releases the session's position store; called once
	// after the program exits. Nil when there is nothing to release.
	Close func()
}

type Model struct {
	session *Session
	keys    keyMap
	help    help.Model

	width  int
	height int

	// panX shifts the canvas horizontally, in terminal cells.
	panX int

	status string

	// Reset confirmation form; non-nil while the prompt is showing.
	confirm        *huh.Form
	confirmedReset bool
}

func NewModel(session *Session) Model {
	return Model{
		session: session,
		keys:    defaultKeyMap(),
		help:    help.New(),
		status:  "drag milestones to adjust, lanes to restack",
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// CloseSession releases the live session's resources. The caller invokes it
// on the final model after Run returns, so writes pending inside the
// debounce window still reach the backend; reloads may have swapped the
// session since the program started.
func (m Model) CloseSession() {
	if m.session != nil && m.session.Close != nil {
		m.session.Close()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case PlanFileChangedMsg:
		return m, m.reloadCmd()

	case planReloadedMsg:
		if msg.err != nil {
			m.status = "reload failed: " + msg.err.Error()
			return m, nil
		}
		m.session = msg.session
		m.status = "plan reloaded"
		return m, nil

	case deadlineSavedMsg:
		m.status = fmt.Sprintf("%s moved to %s",
			msg.result.Placement.Milestone.Name,
			msg.result.NewDeadline.Format("2006-01-02"))
		return m, nil

	case deadlineSaveFailedMsg:
		m.session.Controller.RollbackDeadline(msg.result)
		m.status = "deadline change refused: " + msg.err.Error()
		return m, nil

	case svgExportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = "exported " + msg.path
		}
		return m, nil

	case positionsResetMsg:
		if msg.err != nil {
			m.status = "reset failed: " + msg.err.Error()
			return m, nil
		}
		m.session.Engine.Layout()
		m.status = "positions reset"
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.PanLeft):
		m.panX = clampInt(m.panX+panStep, -m.panLimit(), m.panLimit())
		return m, nil
	case key.Matches(msg, m.keys.PanRight):
		m.panX = clampInt(m.panX-panStep, -m.panLimit(), m.panLimit())
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()
	case key.Matches(msg, m.keys.Reset):
		if m.session.Positions == nil {
			m.status = "no stored positions to reset"
			return m, nil
		}
		m.confirmedReset = false
		m.confirm = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Reset all stored positions?").
					Description("Every milestone and lane goes back to its computed spot.").
					Value(&m.confirmedReset),
			),
		).WithShowHelp(false)
		return m, m.confirm.Init()
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}
	if m.confirm.State == huh.StateCompleted {
		confirmed := m.confirmedReset
		m.confirm = nil
		if !confirmed {
			m.status = "reset canceled"
			return m, nil
		}
		return m, m.resetCmd()
	}
	if m.confirm.State == huh.StateAborted {
		m.confirm = nil
		m.status = "reset canceled"
		return m, nil
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionMotion && msg.Action != tea.MouseActionRelease {
		return m, nil
	}
	px, py := m.cellToDiagram(msg.X, msg.Y)
	ctrl := m.session.Controller

	switch msg.Action {
	case tea.MouseActionPress:
		if key, ok := m.hitPlacement(px, py); ok {
			if err := ctrl.StartMilestoneDrag(key, px, py); err == nil {
				m.status = "dragging milestone"
			}
			return m, nil
		}
		if wsID, ok := m.hitLane(px, py); ok {
			if err := ctrl.StartWorkstreamDrag(wsID, py); err == nil {
				m.status = "dragging lane"
			}
		}
		return m, nil

	case tea.MouseActionMotion:
		switch ctrl.State() {
		case diagram.StateDraggingMilestone:
			_, _ = ctrl.MoveMilestone(px, py)
		case diagram.StateDraggingWorkstream:
			_, _ = ctrl.MoveWorkstream(py)
		}
		return m, nil

	case tea.MouseActionRelease:
		switch ctrl.State() {
		case diagram.StateDraggingMilestone:
			res, err := ctrl.EndMilestoneDrag(px, py)
			if err != nil {
				return m, nil
			}
			m.status = "moved " + res.Placement.Milestone.Name
			if res.DeadlineChanged && m.session.Deadlines != nil {
				return m, m.saveDeadlineCmd(res)
			}
			if res.DeadlineChanged {
				// Nothing persists deadlines in this mode; put x back.
				ctrl.RollbackDeadline(res)
			}
		case diagram.StateDraggingWorkstream:
			if res, err := ctrl.EndWorkstreamDrag(py); err == nil {
				m.status = fmt.Sprintf("lane moved (%d nodes corrected)", len(res.Corrections))
			}
		}
		return m, nil
	}
	return m, nil
}

// saveDeadlineCmd persists the snapped deadline off the event loop, so a
// slow write never freezes pointer handling.
func (m Model) saveDeadlineCmd(res diagram.MilestoneDragResult) tea.Cmd {
	saver := m.session.Deadlines
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := saver.UpdateMilestoneDeadline(ctx, res.Placement.Milestone.ID, res.NewDeadline); err != nil {
			return deadlineSaveFailedMsg{result: res, err: err}
		}
		return deadlineSavedMsg{result: res}
	}
}

func (m Model) resetCmd() tea.Cmd {
	resetter := m.session.Positions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return positionsResetMsg{err: resetter.Reset(ctx)}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	reload := m.session.Reload
	if reload == nil {
		return nil
	}
	return func() tea.Msg {
		session, err := reload()
		return planReloadedMsg{session: session, err: err}
	}
}

func (m Model) exportCmd() tea.Cmd {
	engine := m.session.Engine
	path := m.session.ExportPath
	if path == "" {
		path = "laneplan.svg"
	}
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return svgExportedMsg{err: err}
		}
		defer f.Close()
		if err := render.NewRenderer(engine).Render(f); err != nil {
			return svgExportedMsg{err: err}
		}
		return svgExportedMsg{path: path}
	}
}

const panStep = 4

func (m Model) panLimit() int {
	if m.width <= 0 {
		return 40
	}
	return m.width / 2
}

// cellToDiagram maps a terminal cell onto diagram pixel space, undoing the
// current pan offset.
func (m Model) cellToDiagram(col, row int) (float64, float64) {
	cfg := m.session.Engine.Config()
	w, h := m.width, m.contentRows()
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	px := (float64(col-m.panX) + 0.5) * cfg.Width / float64(w)
	py := (float64(row) + 0.5) * cfg.Height / float64(h)
	return px, py
}

// hitPlacement finds the placement under the pointer, nearest-first.
func (m Model) hitPlacement(px, py float64) (string, bool) {
	engine := m.session.Engine
	radius := engine.Config().NodeRadius * 2

	bestKey := ""
	bestDist := radius * radius
	for _, p := range engine.Placements() {
		c, ok := engine.Arena().Get(p.Key())
		if !ok {
			continue
		}
		dx, dy := c.X-px, c.Y-py
		if d := dx*dx + dy*dy; d <= bestDist {
			bestDist = d
			bestKey = p.Key()
		}
	}
	return bestKey, bestKey != ""
}

// hitLane matches clicks on the label gutter left of the content area.
func (m Model) hitLane(px, py float64) (int64, bool) {
	engine := m.session.Engine
	if px >= engine.Config().MarginLeft {
		return 0, false
	}
	for _, ws := range engine.Plan().Workstreams {
		top, bottom := engine.BandBounds(ws.ID)
		if py >= top && py <= bottom {
			return ws.ID, true
		}
	}
	return 0, false
}

