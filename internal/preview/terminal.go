// Package preview paints decoded LED frames into a terminal.
package preview

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/coreman2200/tiltgrid/internal/motion"
	"github.com/coreman2200/tiltgrid/model"
)

const (
	litRune  = '█'
	darkRune = '·'
	// each LED is drawn two columns wide so cells look square
	cellWidth = 2
)

var darkStyle = tcell.StyleDefault.Foreground(tcell.ColorDimGray)

// Terminal draws the grid with North up: row y of the frame is drawn
// height-1-y lines from the top.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	grid   motion.Grid
}

func NewTerminal(s tcell.Screen, g motion.Grid) *Terminal {
	return &Terminal{screen: s, grid: g}
}

// Show implements led.Viewer.
func (t *Terminal) Show(pixels []model.Pixel) error {
	if len(pixels) != t.grid.Width*t.grid.Height {
		return fmt.Errorf("preview: got %d pixels for a %dx%d grid", len(pixels), t.grid.Width, t.grid.Height)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for y := 0; y < t.grid.Height; y++ {
		row := t.grid.Height - 1 - y
		for x := 0; x < t.grid.Width; x++ {
			p := pixels[y*t.grid.Width+x]
			r, style := darkRune, darkStyle
			if !p.IsBlack() {
				r = litRune
				style = tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(p.R), int32(p.G), int32(p.B)))
			}
			for i := 0; i < cellWidth; i++ {
				t.screen.SetContent(x*cellWidth+i, row, r, nil, style)
			}
		}
	}
	t.screen.Show()
	return nil
}

// Watch polls terminal events until the screen is finalized, calling quit
// on Esc, q or Ctrl-C.
func (t *Terminal) Watch(quit func()) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
				(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				quit()
			}
		case *tcell.EventResize:
			t.mu.Lock()
			t.screen.Sync()
			t.mu.Unlock()
		}
	}
}

func (t *Terminal) Close() {
	t.screen.Fini()
}
