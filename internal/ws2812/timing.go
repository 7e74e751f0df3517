package ws2812

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

// MaxPulseTicks is the longest single phase a 15-bit pulse counter can hold.
const MaxPulseTicks = 1<<15 - 1

// Timing holds the phase durations of the NRZ protocol. Reset is the low
// period that latches a frame into the LEDs.
type Timing struct {
	T0H   time.Duration
	T0L   time.Duration
	T1H   time.Duration
	T1L   time.Duration
	Reset time.Duration
}

// DefaultTiming returns the WS2812 datasheet values.
func DefaultTiming() Timing {
	return Timing{
		T0H:   350 * time.Nanosecond,
		T0L:   800 * time.Nanosecond,
		T1H:   700 * time.Nanosecond,
		T1L:   600 * time.Nanosecond,
		Reset: 280 * time.Microsecond,
	}
}

func (t Timing) Validate() error {
	for _, d := range []time.Duration{t.T0H, t.T0L, t.T1H, t.T1L} {
		if d <= 0 {
			return fmt.Errorf("ws2812: phase duration %s must be positive", d)
		}
	}
	if t.T0H >= t.T1H {
		return fmt.Errorf("ws2812: T0H %s must be shorter than T1H %s", t.T0H, t.T1H)
	}
	if t.Reset < 0 {
		return fmt.Errorf("ws2812: reset %s is negative", t.Reset)
	}
	return nil
}

// Ticks converts d into whole counter ticks at rate, rounding down.
func Ticks(d time.Duration, rate physic.Frequency) (uint32, error) {
	if rate < physic.Hertz {
		return 0, fmt.Errorf("%w: %s", ErrTickRate, rate)
	}
	hz := int64(rate / physic.Hertz)
	n := d.Nanoseconds() * hz / int64(time.Second)
	if n <= 0 || n > MaxPulseTicks {
		return 0, fmt.Errorf("%w: %s is %d ticks at %s", ErrPulse, d, n, rate)
	}
	return uint32(n), nil
}
