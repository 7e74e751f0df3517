package preview

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/tiltgrid/internal/motion"
	"github.com/coreman2200/tiltgrid/model"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(20, 10)
	return s
}

func TestShowDrawsNorthUp(t *testing.T) {
	s := newScreen(t)
	defer s.Fini()
	g := motion.Grid{Width: 3, Height: 2}
	term := NewTerminal(s, g)

	pixels := make([]model.Pixel, 6)
	pixels[1*3+2] = model.Pixel{B: 100} // (2,1): top row, right column
	require.NoError(t, term.Show(pixels))

	r, _, style, _ := s.GetContent(4, 0)
	assert.Equal(t, litRune, r)
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0, 0, 100), fg)
	r, _, _, _ = s.GetContent(5, 0)
	assert.Equal(t, litRune, r, "cells are two columns wide")

	for _, xy := range [][2]int{{0, 0}, {0, 1}, {4, 1}} {
		r, _, _, _ = s.GetContent(xy[0], xy[1])
		assert.Equal(t, darkRune, r, "at %v", xy)
	}
}

func TestShowRejectsWrongLength(t *testing.T) {
	s := newScreen(t)
	defer s.Fini()
	term := NewTerminal(s, motion.Grid{Width: 2, Height: 2})
	assert.Error(t, term.Show(make([]model.Pixel, 3)))
}

func TestWatchQuitsOnKey(t *testing.T) {
	for name, key := range map[string]struct {
		k tcell.Key
		r rune
	}{
		"q":      {tcell.KeyRune, 'q'},
		"escape": {tcell.KeyEscape, 0},
		"ctrl-c": {tcell.KeyCtrlC, 0},
	} {
		t.Run(name, func(t *testing.T) {
			s := newScreen(t)
			term := NewTerminal(s, motion.Grid{Width: 1, Height: 1})

			quit := make(chan struct{}, 1)
			done := make(chan struct{})
			go func() {
				term.Watch(func() {
					select {
					case quit <- struct{}{}:
					default:
					}
				})
				close(done)
			}()

			s.InjectKey(key.k, key.r, tcell.ModNone)
			select {
			case <-quit:
			case <-time.After(2 * time.Second):
				t.Fatal("quit not called")
			}

			term.Close()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("watch did not return after close")
			}
		})
	}
}
