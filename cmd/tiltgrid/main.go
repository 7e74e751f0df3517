package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/coreman2200/tiltgrid/internal/config"
	"github.com/coreman2200/tiltgrid/internal/diagnostics"
	"github.com/coreman2200/tiltgrid/internal/game"
	"github.com/coreman2200/tiltgrid/internal/led"
	"github.com/coreman2200/tiltgrid/internal/preview"
	"github.com/coreman2200/tiltgrid/internal/render"
	"github.com/coreman2200/tiltgrid/internal/sensor"
	"github.com/coreman2200/tiltgrid/internal/ws2812"
)

func main() {
	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code. Everything it opens is closed by
// its defers before it returns.
func run(args []string) int {
	// ---- Flags (config.yaml overrides where set) ----
	fs := flag.NewFlagSet("tiltgrid", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "config.yaml", "path to config.yaml")
		driver     = fs.String("driver", "", "driver: spi | nrzled | sim (overrides config)")
		mode       = fs.String("mode", "", "movement: continuous | discrete (overrides config)")
		logLevel   = fs.String("log-level", "info", "log level: debug | info | warn | error")
		simOnly    = fs.Bool("sim-only", false, "force simulation (no hardware output)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", *logLevel).Msg("unknown log level; using info")
	}

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", *configPath).Msg("no config file; using defaults")
		cfg = config.Default()
	} else if err != nil {
		log.Error().Err(err).Str("path", *configPath).Msg("config load failed")
		return 1
	}
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *simOnly {
		cfg.Driver = config.DriverSim
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 1
	}
	m, err := game.ParseMode(cfg.Mode)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Hardware binding ----
	var (
		sens      sensor.Sensor
		strip     led.Strip
		closeView func()
	)
	console := log.Logger
	timing := cfg.WS2812Timing()
	grid := cfg.MotionGrid()

	if cfg.Driver == config.DriverSim {
		scr, err := tcell.NewScreen()
		if err != nil {
			log.Error().Err(err).Msg("terminal init failed")
			return 1
		}
		if err := scr.Init(); err != nil {
			log.Error().Err(err).Msg("terminal init failed")
			return 1
		}
		// the screen owns stdout until closeView
		log.Logger = zerolog.Nop()
		term := preview.NewTerminal(scr, grid)
		closeView = func() {
			term.Close()
			log.Logger = console
		}
		defer func() {
			if closeView != nil {
				closeView()
			}
		}()
		go term.Watch(stop)

		sens = sensor.NewWobble(8*time.Second, 0.5)
		strip = led.NewPulseStrip(led.NewSim(cfg.SimRate(), timing, term), timing)
	} else {
		if _, err := host.Init(); err != nil {
			log.Error().Err(err).Msg("periph host init failed")
			return 1
		}

		bus, err := i2creg.Open(cfg.Sensor.Bus)
		if err != nil {
			log.Error().Err(err).Str("bus", cfg.Sensor.Bus).Msg("I2C open failed")
			return 1
		}
		defer bus.Close()
		mpu := sensor.NewMPU6886(bus)
		mpu.Address = cfg.Sensor.Addr
		if !mpu.Connected() {
			log.Warn().Uint16("addr", mpu.Address).Msg("unexpected WHO_AM_I; continuing")
		}
		if err := mpu.Configure(); err != nil {
			log.Error().Err(err).Uint16("addr", mpu.Address).Msg("sensor init failed")
			return 1
		}
		sens = mpu

		port, err := spireg.Open(cfg.SPI.Dev)
		if err != nil {
			log.Error().Err(err).Str("dev", cfg.SPI.Dev).Msg("SPI open failed")
			return 1
		}
		switch cfg.Driver {
		case config.DriverNRZ:
			var nrz *led.NRZ
			nrz, err = led.NewNRZ(port, grid.Width*grid.Height, cfg.NRZSpeed())
			if err == nil {
				strip = nrz
			}
		default:
			var tx *led.SPI
			tx, err = led.NewSPI(port, cfg.SPISpeed(), timing.Reset)
			if err == nil {
				strip = led.NewPulseStrip(tx, timing)
			}
		}
		if err != nil {
			_ = port.Close()
			log.Error().Err(err).
				Str("driver", cfg.Driver).
				Str("dev", cfg.SPI.Dev).
				Int64("speed_hz", cfg.SPI.SpeedHz).
				Msg("LED init failed")
			return 1
		}
	}
	defer strip.Close()

	// ---- Game ----
	eng, err := render.NewEngine(grid, strip, cfg.MarkerColor(), cfg.Brightness)
	if err != nil {
		log.Error().Err(err).Msg("render init failed")
		return 1
	}
	logger := log.Logger.With().Str("component", "game").Logger()
	loop := game.NewLooper(sens, eng, game.Options{
		Mode:         m,
		Threshold:    cfg.MovementThreshold,
		Period:       cfg.FramePeriod(),
		StepInterval: cfg.StepInterval(),
		Logger:       &logger,
	})

	log.Info().
		Str("driver", cfg.Driver).
		Str("mode", m.String()).
		Int("width", grid.Width).
		Int("height", grid.Height).
		Msg("tiltgrid starting")

	err = loop.Run(ctx)
	if closeView != nil {
		closeView()
		closeView = nil
	}
	return report(log.Logger, err, &loop.Stats)
}

// report logs how the tick loop ended and picks the exit code.
func report(l zerolog.Logger, err error, stats *game.Stats) int {
	var hw *ws2812.HardwareError
	if errors.As(err, &hw) {
		diagnostics.Log(l, diagnostics.Diagnostic{
			Severity:       diagnostics.Err,
			Code:           diagnostics.HardwareFail,
			Summary:        "LED output failed; stopping",
			Detail:         hw.Error(),
			SuggestedFixes: []string{"check timing.* against the SPI clock", "check SPI wiring"},
		})
		return 1
	}
	if err != nil {
		l.Error().Err(err).Msg("tick loop failed")
		return 1
	}
	l.Info().
		Uint64("frames", stats.Frames).
		Interface("diagnostics", stats.Snapshot()).
		Msg("shutting down")
	return 0
}
