package service

import (
	"io"
	"log/slog"

	"github.com/jspahr/laneplan/internal/diagram"
	"github.com/jspahr/laneplan/internal/domain"
	"github.com/jspahr/laneplan/internal/position"
)

// LogObserver routes non-fatal layout and persistence events to slog. It
// satisfies diagram.SynthesisObserver and produces the error callback the
// position store takes, so one observer covers both surfaces.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes events to the provided writer. A nil writer
// discards everything.
func NewLogObserver(w io.Writer) *LogObserver {
	if w == nil {
		w = io.Discard
	}
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *LogObserver) SkippedEdge(cause domain.DuplicateCause, sourceID, targetID int64) {
	o.logger.Warn("skipped_edge",
		"cause", string(cause),
		"source_id", sourceID,
		"target_id", targetID,
	)
}

// StoreErrors returns the callback the position store invokes on failed
// cache or remote writes.
func (o *LogObserver) StoreErrors() position.ErrorFunc {
	return func(op string, err error) {
		o.logger.Error("position_store", "op", op, "error", err.Error())
	}
}

var _ diagram.SynthesisObserver = (*LogObserver)(nil)
