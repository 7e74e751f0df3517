package render

import (
	"errors"
	"testing"

	"github.com/coreman2200/tiltgrid/internal/led"
	"github.com/coreman2200/tiltgrid/internal/motion"
	"github.com/coreman2200/tiltgrid/internal/ws2812"
	"github.com/coreman2200/tiltgrid/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStrip captures the last frame shown.
type fakeStrip struct {
	last  []model.Pixel
	shows int
	err   error
}

func (s *fakeStrip) Show(fb *model.FrameBuffer) error {
	s.shows++
	s.last = append([]model.Pixel(nil), fb.Pixels()...)
	return s.err
}

func (s *fakeStrip) Close() error { return nil }

var blue = model.Pixel{B: 100}

func TestRenderOnceDrawsSingleMarker(t *testing.T) {
	strip := &fakeStrip{}
	e, err := NewEngine(motion.Grid{Width: 5, Height: 5}, strip, blue, 1)
	require.NoError(t, err)

	require.NoError(t, e.RenderOnce(motion.Position{X: 2, Y: 2}))
	require.NoError(t, e.RenderOnce(motion.Position{X: 4, Y: 1}))

	assert.Equal(t, 2, strip.shows)
	lit := 0
	for i, p := range strip.last {
		if !p.IsBlack() {
			lit++
			assert.Equal(t, 1*5+4, i)
			assert.Equal(t, blue, p)
		}
	}
	assert.Equal(t, 1, lit, "previous marker is cleared")
}

func TestRenderOutsideGridIsDropped(t *testing.T) {
	strip := &fakeStrip{}
	e, err := NewEngine(motion.Grid{Width: 3, Height: 3}, strip, blue, 1)
	require.NoError(t, err)

	require.NoError(t, e.RenderOnce(motion.Position{X: 3, Y: 0}))
	assert.EqualValues(t, 1, e.Dropped)
	for _, p := range strip.last {
		assert.True(t, p.IsBlack())
	}
}

func TestBrightnessScalesMarker(t *testing.T) {
	e, err := NewEngine(motion.Grid{Width: 1, Height: 1}, nil, model.Pixel{R: 200, B: 100}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, model.Pixel{R: 100, B: 50}, e.Marker)

	e, err = NewEngine(motion.Grid{Width: 1, Height: 1}, nil, blue, 0)
	require.NoError(t, err)
	assert.Equal(t, blue, e.Marker, "unset brightness is full")

	require.NoError(t, e.RenderOnce(motion.Position{}), "no strip attached")
}

func TestRenderOnceReturnsStripError(t *testing.T) {
	strip := &fakeStrip{err: &ws2812.HardwareError{Op: "transmit", Err: errors.New("x")}}
	e, err := NewEngine(motion.Grid{Width: 2, Height: 2}, strip, blue, 1)
	require.NoError(t, err)

	err = e.RenderOnce(motion.Position{})
	var hw *ws2812.HardwareError
	assert.True(t, errors.As(err, &hw))
}

func TestRenderThroughSimEncoder(t *testing.T) {
	sim := led.NewSim(0, ws2812.DefaultTiming(), nil)
	e, err := NewEngine(motion.Grid{Width: 5, Height: 5}, led.NewPulseStrip(sim, ws2812.DefaultTiming()), blue, 1)
	require.NoError(t, err)

	require.NoError(t, e.RenderOnce(motion.Position{X: 1, Y: 3}))
	got := sim.Last()
	require.Len(t, got, 25)
	assert.Equal(t, blue, got[3*5+1])
}

func TestNewEngineRejectsEmptyGrid(t *testing.T) {
	_, err := NewEngine(motion.Grid{}, nil, blue, 1)
	assert.Error(t, err)
}
