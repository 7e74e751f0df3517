package led

import (
	"fmt"
	"sync"

	"github.com/coreman2200/tiltgrid/internal/ws2812"
	"github.com/coreman2200/tiltgrid/model"
	"periph.io/x/conn/v3/physic"
)

// DefaultSimRate matches an 80MHz peripheral clock divided by two.
const DefaultSimRate = 40 * physic.MegaHertz

// Viewer displays a decoded frame.
type Viewer interface {
	Show(pixels []model.Pixel) error
}

// Sim is a loopback transmitter: it decodes every pulse train it is given
// back into pixels and passes them to a Viewer. It lets the full encode path
// run on a host without LEDs.
type Sim struct {
	mu     sync.Mutex
	enc    ws2812.Encoder
	rate   physic.Frequency
	view   Viewer
	frames uint64
	last   []model.Pixel
}

func NewSim(rate physic.Frequency, t ws2812.Timing, view Viewer) *Sim {
	if rate <= 0 {
		rate = DefaultSimRate
	}
	return &Sim{enc: ws2812.NewEncoder(t), rate: rate, view: view}
}

func (s *Sim) TickRate() (physic.Frequency, error) {
	return s.rate, nil
}

func (s *Sim) Transmit(edges []ws2812.PulseEdge) error {
	pixels, err := s.enc.Decode(edges, s.rate)
	if err != nil {
		return fmt.Errorf("sim decode: %w", err)
	}
	s.mu.Lock()
	s.frames++
	s.last = pixels
	s.mu.Unlock()
	if s.view != nil {
		return s.view.Show(pixels)
	}
	return nil
}

// Frames returns the number of frames received so far.
func (s *Sim) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Last returns the most recently decoded frame.
func (s *Sim) Last() []model.Pixel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
