package motion

import (
	"fmt"
	"math"
)

// Position is a grid cell.
type Position struct {
	X, Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Grid is the size of the playing field.
type Grid struct {
	Width, Height int
}

func (g Grid) Valid() bool {
	return g.Width > 0 && g.Height > 0
}

// Center is where the marker starts.
func (g Grid) Center() Position {
	return Position{X: g.Width / 2, Y: g.Height / 2}
}

func (g Grid) clamp(p Position) Position {
	return Position{X: clampInt(p.X, 0, g.Width-1), Y: clampInt(p.Y, 0, g.Height-1)}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Continuous integrates velocity into a sub-cell position. The displayed
// cell is the truncated fractional position.
type Continuous struct {
	grid      Grid
	threshold float64
	fx, fy    float64
	pos       Position
}

func NewContinuous(g Grid, threshold float64) *Continuous {
	c := &Continuous{grid: g, threshold: threshold}
	c.Reset(g.Center())
	return c
}

// Reset places the marker at p, clamped to the grid.
func (c *Continuous) Reset(p Position) {
	c.pos = c.grid.clamp(p)
	c.fx, c.fy = float64(c.pos.X), float64(c.pos.Y)
}

// Update advances by elapsed seconds at the given speed multiplier and
// returns the direction taken. Inside the dead-zone nothing changes.
func (c *Continuous) Update(pitch, roll, elapsed, multiplier float64) Direction {
	d := DirectionFor(pitch, roll, c.threshold)
	if d == Stay {
		return d
	}
	if elapsed < 0 || math.IsNaN(elapsed) {
		elapsed = 0
	}
	vx, vy := d.Velocity()
	c.fx = clampFloat(c.fx+vx*elapsed*multiplier, 0, float64(c.grid.Width-1))
	c.fy = clampFloat(c.fy+vy*elapsed*multiplier, 0, float64(c.grid.Height-1))
	c.pos = Position{X: int(math.Floor(c.fx)), Y: int(math.Floor(c.fy))}
	return d
}

func (c *Continuous) Position() Position { return c.pos }

// Fractional returns the sub-cell coordinates.
func (c *Continuous) Fractional() (fx, fy float64) { return c.fx, c.fy }

// Discrete moves one whole cell per decision, stopping at the edges.
type Discrete struct {
	grid      Grid
	threshold float64
	pos       Position
}

func NewDiscrete(g Grid, threshold float64) *Discrete {
	return &Discrete{grid: g, threshold: threshold, pos: g.Center()}
}

func (d *Discrete) Reset(p Position) {
	d.pos = d.grid.clamp(p)
}

// Step moves one cell towards where the tilt points and returns the
// direction decided.
func (d *Discrete) Step(pitch, roll float64) Direction {
	dir := DirectionFor(pitch, roll, d.threshold)
	dx, dy := dir.Step()
	d.pos = d.grid.clamp(Position{X: d.pos.X + dx, Y: d.pos.Y + dy})
	return dir
}

func (d *Discrete) Position() Position { return d.pos }
