// Package fusion derives tilt angles from an acceleration vector.
package fusion

import (
	"math"

	"github.com/coreman2200/tiltgrid/internal/sensor"
)

// Attitude is a tilt in degrees.
type Attitude struct {
	Pitch float64
	Roll  float64
}

// Angles computes pitch and roll from a single acceleration sample.
//
// The second atan2 argument is the sum of the squares of the other two
// axes, not their magnitude. Movement thresholds assume this curve.
func Angles(a sensor.Acceleration) Attitude {
	return Attitude{
		Pitch: math.Atan2(a.Y, a.X*a.X+a.Z*a.Z) * 180 / math.Pi,
		Roll:  math.Atan2(a.X, a.Y*a.Y+a.Z*a.Z) * 180 / math.Pi,
	}
}
