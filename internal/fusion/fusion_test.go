package fusion

import (
	"math"
	"testing"

	"github.com/coreman2200/tiltgrid/internal/sensor"
	"github.com/stretchr/testify/assert"
)

func TestAnglesLevel(t *testing.T) {
	a := Angles(sensor.Acceleration{Z: 1})
	assert.InDelta(t, 0, a.Pitch, 1e-12)
	assert.InDelta(t, 0, a.Roll, 1e-12)
}

func TestAnglesUseSumOfSquares(t *testing.T) {
	acc := sensor.Acceleration{X: 0.3, Y: 0.4, Z: 2}
	a := Angles(acc)

	// denominators are 0.09+4 and 0.16+4, not their square roots
	assert.InDelta(t, math.Atan2(0.4, 4.09)*180/math.Pi, a.Pitch, 1e-12)
	assert.InDelta(t, math.Atan2(0.3, 4.16)*180/math.Pi, a.Roll, 1e-12)
	assert.NotEqual(t, math.Atan2(0.4, math.Sqrt(4.09))*180/math.Pi, a.Pitch)
}

func TestAnglesSigns(t *testing.T) {
	a := Angles(sensor.Acceleration{X: -0.5, Y: 0.5, Z: 0.7})
	assert.Greater(t, a.Pitch, 0.0)
	assert.Less(t, a.Roll, 0.0)

	// straight up on Y with nothing elsewhere is a quarter turn
	a = Angles(sensor.Acceleration{Y: 1})
	assert.InDelta(t, 90, a.Pitch, 1e-12)
	assert.InDelta(t, 0, a.Roll, 1e-12)
}
