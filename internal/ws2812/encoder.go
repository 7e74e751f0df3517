// Package ws2812 turns pixels into the timed pulse train of the one-wire
// NRZ protocol spoken by WS2812-class LEDs, and back.
//
// Every bit is a high phase followed by a low phase; the relative length of
// the two encodes the value. Pixels go out as 24-bit GRB words, MSB first,
// in frame buffer order. A frame must reach the wire in one piece: a low
// period longer than the reset threshold in the middle of a frame latches
// whatever has been shifted so far.
package ws2812

import (
	"errors"
	"fmt"

	"github.com/coreman2200/tiltgrid/model"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

const (
	BitsPerPixel  = 24
	EdgesPerBit   = 2
	EdgesPerPixel = BitsPerPixel * EdgesPerBit
)

var (
	ErrTickRate  = errors.New("ws2812: tick rate unavailable")
	ErrPulse     = errors.New("ws2812: pulse out of range")
	ErrMalformed = errors.New("ws2812: malformed pulse train")
)

// HardwareError is a failure that makes the current frame unsendable. It is
// never recoverable within the frame: nothing is transmitted.
type HardwareError struct {
	Op  string
	Err error
}

func (e *HardwareError) Error() string {
	return "ws2812: " + e.Op + ": " + e.Err.Error()
}

func (e *HardwareError) Unwrap() error { return e.Err }

// PulseEdge is one phase of a bit: a line level held for Ticks counter ticks.
type PulseEdge struct {
	Level gpio.Level
	Ticks uint32
}

// Transmitter emits a complete pulse train. Transmit must block until the
// whole train is on the wire and must not split it.
type Transmitter interface {
	TickRate() (physic.Frequency, error)
	Transmit(edges []PulseEdge) error
}

// Encoder is stateless apart from its timing constants.
type Encoder struct {
	Timing Timing
}

func NewEncoder(t Timing) Encoder {
	return Encoder{Timing: t}
}

type bitPulses [2][EdgesPerBit]PulseEdge

func (e Encoder) pulses(rate physic.Frequency) (bitPulses, error) {
	var p bitPulses
	t0h, err := Ticks(e.Timing.T0H, rate)
	if err != nil {
		return p, err
	}
	t0l, err := Ticks(e.Timing.T0L, rate)
	if err != nil {
		return p, err
	}
	t1h, err := Ticks(e.Timing.T1H, rate)
	if err != nil {
		return p, err
	}
	t1l, err := Ticks(e.Timing.T1L, rate)
	if err != nil {
		return p, err
	}
	p[0] = [EdgesPerBit]PulseEdge{{Level: gpio.High, Ticks: t0h}, {Level: gpio.Low, Ticks: t0l}}
	p[1] = [EdgesPerBit]PulseEdge{{Level: gpio.High, Ticks: t1h}, {Level: gpio.Low, Ticks: t1l}}
	return p, nil
}

// Encode returns exactly EdgesPerPixel*len(pixels) edges.
func (e Encoder) Encode(pixels []model.Pixel, rate physic.Frequency) ([]PulseEdge, error) {
	return e.EncodeInto(nil, pixels, rate)
}

// EncodeInto is Encode reusing dst's storage. On error nothing is returned.
func (e Encoder) EncodeInto(dst []PulseEdge, pixels []model.Pixel, rate physic.Frequency) ([]PulseEdge, error) {
	p, err := e.pulses(rate)
	if err != nil {
		op := "pulse"
		if errors.Is(err, ErrTickRate) {
			op = "tick rate"
		}
		return nil, &HardwareError{Op: op, Err: err}
	}

	n := EdgesPerPixel * len(pixels)
	if cap(dst) < n {
		dst = make([]PulseEdge, 0, n)
	}
	dst = dst[:0]
	for _, px := range pixels {
		w := px.Word()
		for i := BitsPerPixel - 1; i >= 0; i-- {
			bit := (w >> uint(i)) & 1
			dst = append(dst, p[bit][0], p[bit][1])
		}
	}
	return dst, nil
}

// Send encodes pixels at tx's tick rate and hands the whole train to tx in
// one call. buf is reused for the encoded train and returned for the next
// frame. Every failure is a *HardwareError and nothing partial is sent.
func (e Encoder) Send(tx Transmitter, pixels []model.Pixel, buf []PulseEdge) ([]PulseEdge, error) {
	rate, err := tx.TickRate()
	if err != nil {
		return buf, &HardwareError{Op: "tick rate", Err: fmt.Errorf("%w: %v", ErrTickRate, err)}
	}
	edges, err := e.EncodeInto(buf, pixels, rate)
	if err != nil {
		return buf, err
	}
	if err := tx.Transmit(edges); err != nil {
		var hw *HardwareError
		if errors.As(err, &hw) {
			return edges, err
		}
		return edges, &HardwareError{Op: "transmit", Err: err}
	}
	return edges, nil
}

// Decode recovers pixels from a pulse train produced at rate. A high phase
// at least as long as the midpoint between T0H and T1H reads as a one.
func (e Encoder) Decode(edges []PulseEdge, rate physic.Frequency) ([]model.Pixel, error) {
	if len(edges)%EdgesPerPixel != 0 {
		return nil, fmt.Errorf("%w: %d edges is not a whole number of pixels", ErrMalformed, len(edges))
	}
	p, err := e.pulses(rate)
	if err != nil {
		return nil, err
	}
	threshold := (p[0][0].Ticks + p[1][0].Ticks + 1) / 2

	out := make([]model.Pixel, 0, len(edges)/EdgesPerPixel)
	for i := 0; i < len(edges); i += EdgesPerPixel {
		var w uint32
		for b := 0; b < BitsPerPixel; b++ {
			hi, lo := edges[i+2*b], edges[i+2*b+1]
			if hi.Level != gpio.High || lo.Level != gpio.Low {
				return nil, fmt.Errorf("%w: bit %d of pixel %d has levels %s/%s", ErrMalformed, b, i/EdgesPerPixel, hi.Level, lo.Level)
			}
			w <<= 1
			if hi.Ticks >= threshold {
				w |= 1
			}
		}
		out = append(out, model.FromWord(w))
	}
	return out, nil
}
