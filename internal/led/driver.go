package led

import (
	"io"

	"github.com/coreman2200/tiltgrid/internal/ws2812"
	"github.com/coreman2200/tiltgrid/model"
)

// Strip abstracts an LED output sink.
type Strip interface {
	// Show pushes a whole frame to hardware. It blocks until the frame is out.
	Show(fb *model.FrameBuffer) error
	// Close releases resources.
	Close() error
}

// PulseStrip encodes frames with the NRZ protocol encoder and hands each
// pulse train to a Transmitter in one piece.
type PulseStrip struct {
	enc ws2812.Encoder
	tx  ws2812.Transmitter
	buf []ws2812.PulseEdge
}

func NewPulseStrip(tx ws2812.Transmitter, t ws2812.Timing) *PulseStrip {
	return &PulseStrip{enc: ws2812.NewEncoder(t), tx: tx}
}

func (s *PulseStrip) Show(fb *model.FrameBuffer) error {
	var err error
	s.buf, err = s.enc.Send(s.tx, fb.Pixels(), s.buf)
	return err
}

func (s *PulseStrip) Close() error {
	if c, ok := s.tx.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
