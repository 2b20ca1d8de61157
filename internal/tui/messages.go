package tui

import "github.com/jspahr/laneplan/internal/diagram"

// PlanFileChangedMsg is sent by the file watcher after the plan file
// settles.
type PlanFileChangedMsg struct{}

// deadlineSavedMsg reports a successful off-loop deadline write.
type deadlineSavedMsg struct {
	result diagram.MilestoneDragResult
}

// deadlineSaveFailedMsg reports a refused deadline write; the drag result is
// carried along so the model can roll the x coordinate back.
type deadlineSaveFailedMsg struct {
	result diagram.MilestoneDragResult
	err    error
}

// positionsResetMsg reports the outcome of a confirmed reset.
type positionsResetMsg struct {
	err error
}

// svgExportedMsg reports the outcome of an SVG export.
type svgExportedMsg struct {
	path string
	err  error
}

// planReloadedMsg carries a freshly rebuilt session after a file change.
type planReloadedMsg struct {
	session *Session
	err     error
}
