package diagnostics

import (
	"sync"

	"github.com/rs/zerolog"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

// Codes raised by the game loop.
const (
	SensorRead   = "SENSOR.READ"
	FrameOverrun = "FRAME.OVERRUN"
	PixelOOB     = "PIXEL.OOB"
	HardwareFail = "HARDWARE.FAIL"
)

type Diagnostic struct {
	Severity       Severity
	Code           string
	Summary        string
	Detail         string
	LikelyCauses   []string
	SuggestedFixes []string
	Evidence       map[string]any
}

// Log writes d to l at the level matching its severity.
func Log(l zerolog.Logger, d Diagnostic) {
	var ev *zerolog.Event
	switch d.Severity {
	case Err:
		ev = l.Error()
	case Warn:
		ev = l.Warn()
	default:
		ev = l.Info()
	}
	ev = ev.Str("code", d.Code)
	if d.Detail != "" {
		ev = ev.Str("detail", d.Detail)
	}
	if len(d.LikelyCauses) > 0 {
		ev = ev.Strs("likely_causes", d.LikelyCauses)
	}
	if len(d.SuggestedFixes) > 0 {
		ev = ev.Strs("suggested_fixes", d.SuggestedFixes)
	}
	if len(d.Evidence) > 0 {
		ev = ev.Fields(d.Evidence)
	}
	ev.Msg(d.Summary)
}

// Counters tallies diagnostics by code. The zero value is ready to use.
type Counters struct {
	mu     sync.Mutex
	counts map[string]uint64
}

func (c *Counters) Inc(code string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]uint64)
	}
	c.counts[code]++
	return c.counts[code]
}

func (c *Counters) Get(code string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[code]
}

// Snapshot copies the current counts.
func (c *Counters) Snapshot() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint64, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}
