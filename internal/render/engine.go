package render

import (
	"time"

	"github.com/coreman2200/tiltgrid/internal/led"
	"github.com/coreman2200/tiltgrid/internal/motion"
	"github.com/coreman2200/tiltgrid/model"
)

// Engine owns the frame buffer. Each frame it clears the grid, draws the
// marker at the current position, then writes the frame to the strip.
type Engine struct {
	FB     *model.FrameBuffer
	Strip  led.Strip
	Marker model.Pixel

	// Dropped counts marker writes that fell outside the grid.
	Dropped uint64

	// metrics (last durations in ms)
	Last struct {
		RenderMS float64
		ShowMS   float64
		TotalMS  float64
	}
}

// NewEngine allocates the frame buffer. The marker colour is scaled by
// brightness (0..1).
func NewEngine(g motion.Grid, strip led.Strip, marker model.Pixel, brightness float64) (*Engine, error) {
	if !g.Valid() {
		return nil, model.ErrInvalidDimensions
	}
	fb, err := model.NewFrameBuffer(g.Width, g.Height)
	if err != nil {
		return nil, err
	}
	if brightness <= 0 || brightness > 1 {
		brightness = 1
	}
	return &Engine{
		FB:     fb,
		Strip:  strip,
		Marker: marker.Scale(brightness),
	}, nil
}

// Rasterize draws the marker at p into a freshly cleared frame. It reports
// false if p was outside the grid and nothing was drawn.
func (e *Engine) Rasterize(p motion.Position) bool {
	e.FB.Clear()
	if !e.FB.SetAt(p.X, p.Y, e.Marker) {
		e.Dropped++
		return false
	}
	return true
}

// RenderOnce rasterizes p and shows the frame. Errors come from the strip
// and mean the frame did not reach the LEDs.
func (e *Engine) RenderOnce(p motion.Position) error {
	start := time.Now()
	e.Rasterize(p)
	e.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0

	showStart := time.Now()
	if e.Strip != nil {
		if err := e.Strip.Show(e.FB); err != nil {
			return err
		}
	}
	e.Last.ShowMS = float64(time.Since(showStart).Microseconds()) / 1000.0
	e.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	return nil
}
