// Package sensor provides acceleration readings for tilt input.
package sensor

import (
	"errors"
	"math"
	"time"
)

// ErrRead marks a failed reading. It is transient: the caller may skip the
// sample and try again on the next tick.
var ErrRead = errors.New("sensor: read failed")

// Acceleration is a 3-axis reading in g.
type Acceleration struct {
	X, Y, Z float64
}

// Sensor supplies acceleration readings. ReadAcceleration blocks for the
// bus transfer.
type Sensor interface {
	ReadAcceleration() (Acceleration, error)
}

// Wobble is a synthetic sensor for running without hardware. It tips the
// board in a slow circle of the given amplitude (in g on the X/Y axes) with
// gravity on Z.
type Wobble struct {
	Period    time.Duration
	Amplitude float64

	start time.Time
	now   func() time.Time
}

func NewWobble(period time.Duration, amplitude float64) *Wobble {
	if period <= 0 {
		period = 8 * time.Second
	}
	w := &Wobble{Period: period, Amplitude: amplitude, now: time.Now}
	w.start = w.now()
	return w
}

func (w *Wobble) ReadAcceleration() (Acceleration, error) {
	phase := 2 * math.Pi * float64(w.now().Sub(w.start)) / float64(w.Period)
	return Acceleration{
		X: w.Amplitude * math.Cos(phase),
		Y: w.Amplitude * math.Sin(phase),
		Z: 1,
	}, nil
}
