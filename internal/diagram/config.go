package diagram

// Config carries the diagram's layout constants. Everything downstream
// (layout, drag, persistence) reads sizes from here so tests and the TUI can
// run the same pipeline at different canvas sizes.
type Config struct {
	Width  float64
	Height float64

	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	// BandHeight is the vertical extent of one workstream lane;
	// BandPadding keeps nodes off the lane edges.
	BandHeight  float64
	BandPadding float64

	NodeRadius float64

	// NoDeadlineX is the fixed x for milestones without a deadline.
	NoDeadlineX float64

	// MinBandCenter is the lowest y a lane center may be dragged to.
	MinBandCenter float64
}

// DefaultConfig returns the layout constants used by the SVG renderer.
func DefaultConfig() Config {
	return Config{
		Width:         1200,
		Height:        640,
		MarginTop:     60,
		MarginBottom:  40,
		MarginLeft:    150,
		MarginRight:   40,
		BandHeight:    110,
		BandPadding:   12,
		NodeRadius:    14,
		NoDeadlineX:   174,
		MinBandCenter: 20,
	}
}

// ContentWidth is the horizontal extent available to the timeline scale.
func (c Config) ContentWidth() float64 {
	return c.Width - c.MarginLeft - c.MarginRight
}

// ContentHeight is the vertical extent positions are normalized against.
func (c Config) ContentHeight() float64 {
	return c.Height - c.MarginTop - c.MarginBottom
}
