package diagram

import (
	"sort"
	"time"

	"github.com/jspahr/laneplan/internal/domain"
)

// TimelineIndex holds the diagram's distinct deadline dates in ascending
// order and maps them onto pixel x over [0, contentWidth]. The markers are
// both the x-axis grid and the snap points a dragged milestone must land on.
type TimelineIndex struct {
	markers      []time.Time
	domainMin    time.Time
	domainMax    time.Time
	contentWidth float64
}

// NewTimelineIndex collects distinct deadline days from the milestones. A
// plan with no deadlines at all still gets a usable axis: three evenly
// spaced placeholder markers starting at now.
func NewTimelineIndex(milestones []domain.Milestone, contentWidth float64, now time.Time) *TimelineIndex {
	seen := make(map[time.Time]bool)
	var markers []time.Time
	for _, m := range milestones {
		if m.Deadline == nil {
			continue
		}
		day := truncateToDay(*m.Deadline)
		if !seen[day] {
			seen[day] = true
			markers = append(markers, day)
		}
	}

	if len(markers) == 0 {
		base := truncateToDay(now)
		markers = []time.Time{base, base.AddDate(0, 1, 0), base.AddDate(0, 2, 0)}
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].Before(markers[j]) })

	// Nice the scale domain to month boundaries so the axis starts and ends
	// on round dates.
	min := monthStart(markers[0])
	max := monthStart(markers[len(markers)-1]).AddDate(0, 1, 0)

	return &TimelineIndex{
		markers:      markers,
		domainMin:    min,
		domainMax:    max,
		contentWidth: contentWidth,
	}
}

// Markers returns the sorted distinct deadline dates.
func (t *TimelineIndex) Markers() []time.Time {
	out := make([]time.Time, len(t.markers))
	copy(out, t.markers)
	return out
}

// Domain returns the niced scale boundaries.
func (t *TimelineIndex) Domain() (time.Time, time.Time) {
	return t.domainMin, t.domainMax
}

// X maps a date onto the content-relative x axis.
func (t *TimelineIndex) X(d time.Time) float64 {
	span := t.domainMax.Sub(t.domainMin)
	if span <= 0 {
		return t.contentWidth / 2
	}
	frac := float64(truncateToDay(d).Sub(t.domainMin)) / float64(span)
	return frac * t.contentWidth
}

// NearestMarker returns the marker whose scaled x is closest to the given x,
// with ties resolved to the earliest marker.
func (t *TimelineIndex) NearestMarker(x float64) time.Time {
	best := t.markers[0]
	bestDist := abs(t.X(best) - x)
	for _, m := range t.markers[1:] {
		if d := abs(t.X(m) - x); d < bestDist {
			best, bestDist = m, d
		}
	}
	return best
}

func truncateToDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
