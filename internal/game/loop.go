package game

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/tiltgrid/internal/diagnostics"
	"github.com/coreman2200/tiltgrid/internal/fusion"
	"github.com/coreman2200/tiltgrid/internal/motion"
	"github.com/coreman2200/tiltgrid/internal/render"
	"github.com/coreman2200/tiltgrid/internal/sensor"
)

// DefaultPeriod is roughly 60 frames per second.
const DefaultPeriod = 16667 * time.Microsecond

type Mode int

const (
	Continuous Mode = iota
	Discrete
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "continuous", "":
		return Continuous, nil
	case "discrete":
		return Discrete, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) String() string {
	if m == Discrete {
		return "discrete"
	}
	return "continuous"
}

// Options configure a Looper.
type Options struct {
	Mode      Mode
	Threshold float64
	// Period is the target frame time.
	Period time.Duration
	// StepInterval paces discrete mode. Zero steps every tick.
	StepInterval time.Duration
	Logger       *zerolog.Logger
}

// Stats are updated by the tick loop only.
type Stats struct {
	Frames uint64
	Steps  uint64
	diagnostics.Counters
}

// Looper runs the single-threaded tick loop. It owns the motion state and,
// through the render engine, the frame buffer.
type Looper struct {
	sensor sensor.Sensor
	engine *render.Engine
	opts   Options
	log    zerolog.Logger

	cont      *motion.Continuous
	disc      *motion.Discrete
	sinceStep time.Duration

	Stats Stats

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

func NewLooper(s sensor.Sensor, e *render.Engine, opts Options) *Looper {
	if opts.Period <= 0 {
		opts.Period = DefaultPeriod
	}
	l := &Looper{
		sensor: s,
		engine: e,
		opts:   opts,
		log:    zerolog.Nop(),
		now:    time.Now,
		sleep:  sleepCtx,
	}
	if opts.Logger != nil {
		l.log = *opts.Logger
	}
	g := motion.Grid{Width: e.FB.Width(), Height: e.FB.Height()}
	switch opts.Mode {
	case Discrete:
		l.disc = motion.NewDiscrete(g, opts.Threshold)
	default:
		l.cont = motion.NewContinuous(g, opts.Threshold)
	}
	return l
}

func (l *Looper) Position() motion.Position {
	if l.disc != nil {
		return l.disc.Position()
	}
	return l.cont.Position()
}

// Tick runs one iteration with dt elapsed since the previous one. A failed
// sensor read skips the motion update and the current position is drawn
// again. Any error returned came from the strip and is fatal.
func (l *Looper) Tick(dt time.Duration) error {
	acc, err := l.sensor.ReadAcceleration()
	if err != nil {
		n := l.Stats.Inc(diagnostics.SensorRead)
		// first failure, then every 100th
		if n == 1 || n%100 == 0 {
			diagnostics.Log(l.log, diagnostics.Diagnostic{
				Severity:     diagnostics.Warn,
				Code:         diagnostics.SensorRead,
				Summary:      "sensor read failed; holding position",
				Detail:       err.Error(),
				LikelyCauses: []string{"loose I2C wiring", "bus contention"},
				Evidence:     map[string]any{"count": n},
			})
		}
	} else {
		l.move(fusion.Angles(acc), dt)
	}

	dropped := l.engine.Dropped
	if err := l.engine.RenderOnce(l.Position()); err != nil {
		l.Stats.Inc(diagnostics.HardwareFail)
		return err
	}
	if l.engine.Dropped > dropped {
		n := l.Stats.Inc(diagnostics.PixelOOB)
		l.log.Debug().Str("code", diagnostics.PixelOOB).Stringer("pos", l.Position()).Uint64("count", n).Msg("marker outside grid")
	}
	l.Stats.Frames++
	return nil
}

func (l *Looper) move(a fusion.Attitude, dt time.Duration) {
	if l.disc != nil {
		l.sinceStep += dt
		if l.opts.StepInterval > 0 && l.sinceStep < l.opts.StepInterval {
			return
		}
		l.sinceStep = 0
		if l.disc.Step(a.Pitch, a.Roll) != motion.Stay {
			l.Stats.Steps++
		}
		return
	}
	mul := motion.SpeedMultiplier(a.Pitch, a.Roll)
	if l.cont.Update(a.Pitch, a.Roll, dt.Seconds(), mul) != motion.Stay {
		l.Stats.Steps++
	}
}

// Run ticks until ctx is done or a tick fails. Each tick sleeps out the
// rest of the period; an overrun goes straight to the next tick and the
// lost time is not made up.
func (l *Looper) Run(ctx context.Context) error {
	l.log.Info().
		Str("mode", l.opts.Mode.String()).
		Dur("period", l.opts.Period).
		Stringer("start", l.Position()).
		Msg("tick loop starting")

	last := l.now()
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		start := l.now()
		var dt time.Duration
		if !first {
			dt = start.Sub(last)
		}
		first = false
		last = start

		if err := l.Tick(dt); err != nil {
			return err
		}

		spent := l.now().Sub(start)
		if spent < l.opts.Period {
			l.sleep(ctx, l.opts.Period-spent)
			continue
		}
		n := l.Stats.Inc(diagnostics.FrameOverrun)
		l.log.Debug().Str("code", diagnostics.FrameOverrun).Dur("spent", spent).Uint64("count", n).Msg("frame overran period")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
