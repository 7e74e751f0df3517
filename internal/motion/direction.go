// Package motion turns tilt angles into movement of a single marker on a
// grid. Both movement modes share one direction decision.
package motion

import "math"

// Direction is one of the eight compass octants, or Stay inside the dead-zone.
// North is +y and East is +x in grid coordinates.
type Direction uint8

const (
	Stay Direction = iota
	East
	NorthEast
	North
	NorthWest
	West
	SouthWest
	South
	SouthEast
)

var directionNames = [...]string{"Stay", "East", "NorthEast", "North", "NorthWest", "West", "SouthWest", "South", "SouthEast"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "Direction(?)"
}

// diagonal is the literal 0.70710, not math.Sqrt2 / 2.
const diagonal = 0.70710

// Velocity is the per-second displacement for d before speed scaling.
func (d Direction) Velocity() (vx, vy float64) {
	switch d {
	case East:
		return 1, 0
	case NorthEast:
		return diagonal, diagonal
	case North:
		return 0, 1
	case NorthWest:
		return -diagonal, diagonal
	case West:
		return -1, 0
	case SouthWest:
		return -diagonal, -diagonal
	case South:
		return 0, -1
	case SouthEast:
		return diagonal, -diagonal
	}
	return 0, 0
}

// Step is the single-cell offset for d.
func (d Direction) Step() (dx, dy int) {
	switch d {
	case East:
		return 1, 0
	case NorthEast:
		return 1, 1
	case North:
		return 0, 1
	case NorthWest:
		return -1, 1
	case West:
		return -1, 0
	case SouthWest:
		return -1, -1
	case South:
		return 0, -1
	case SouthEast:
		return 1, -1
	}
	return 0, 0
}

// OctantFor buckets an angle in degrees, as returned by atan2, into an
// octant. Each sector includes its lower bound.
func OctantFor(angle float64) Direction {
	switch {
	case angle >= -22.5 && angle < 22.5:
		return East
	case angle >= 22.5 && angle < 67.5:
		return NorthEast
	case angle >= 67.5 && angle < 112.5:
		return North
	case angle >= 112.5 && angle < 157.5:
		return NorthWest
	case angle >= -67.5 && angle < -22.5:
		return SouthEast
	case angle >= -112.5 && angle < -67.5:
		return South
	case angle >= -157.5 && angle < -112.5:
		return SouthWest
	}
	return West
}

// DirectionFor decides where a tilt of pitch/roll degrees points. Tilts
// with magnitude below threshold, or that are not numbers, are Stay.
func DirectionFor(pitch, roll, threshold float64) Direction {
	mag := math.Sqrt(pitch*pitch + roll*roll)
	if math.IsNaN(mag) || mag < threshold {
		return Stay
	}
	return OctantFor(math.Atan2(pitch, roll) * 180 / math.Pi)
}

// SpeedMultiplier maps tilt magnitude onto an ease-out ramp from 1 (level)
// to 16 (90 degrees or more).
func SpeedMultiplier(pitch, roll float64) float64 {
	t := math.Sqrt(pitch*pitch+roll*roll) / 90
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return rampForT(t)
}

func rampForT(t float64) float64 {
	inv := 1 - t
	return 1 + (1-inv*inv*inv*inv)*15
}
