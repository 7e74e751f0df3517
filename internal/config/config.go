package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/tiltgrid/internal/motion"
	"github.com/coreman2200/tiltgrid/internal/ws2812"
	"github.com/coreman2200/tiltgrid/model"
)

const (
	ModeContinuous = "continuous"
	ModeDiscrete   = "discrete"

	DriverSPI = "spi"
	DriverNRZ = "nrzled"
	DriverSim = "sim"
)

type Grid struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Color struct {
	R int `yaml:"r"`
	G int `yaml:"g"`
	B int `yaml:"b"`
}

type Timing struct {
	T0HNs   int `yaml:"t0h_ns"`
	T0LNs   int `yaml:"t0l_ns"`
	T1HNs   int `yaml:"t1h_ns"`
	T1LNs   int `yaml:"t1l_ns"`
	ResetUs int `yaml:"reset_us"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, empty for the first port
	SpeedHz int64  `yaml:"speed_hz"` // e.g. 20000000
}

type NRZ struct {
	SpeedHz int64 `yaml:"speed_hz"`
}

type Sensor struct {
	Bus  string `yaml:"bus"` // e.g. /dev/i2c-1, empty for the first bus
	Addr uint16 `yaml:"addr"`
}

type Sim struct {
	TickHz int64 `yaml:"tick_hz"`
}

type Config struct {
	Driver string `yaml:"driver"` // "spi" | "nrzled" | "sim"
	Mode   string `yaml:"mode"`   // "continuous" | "discrete"

	Grid              Grid    `yaml:"grid"`
	MovementThreshold float64 `yaml:"movement_threshold"`
	FramePeriodUs     int     `yaml:"frame_period_us"`
	StepIntervalMs    int     `yaml:"step_interval_ms"`

	Marker     Color   `yaml:"marker"`
	Brightness float64 `yaml:"brightness"`
	Timing     Timing  `yaml:"timing"`

	SPI    SPI    `yaml:"spi,omitempty"`
	NRZ    NRZ    `yaml:"nrz,omitempty"`
	Sensor Sensor `yaml:"sensor,omitempty"`
	Sim    Sim    `yaml:"sim,omitempty"`
}

// Default is a 5x5 board with a blue marker, tilting continuously at
// roughly 60 frames per second.
func Default() *Config {
	return &Config{
		Driver:            DriverSim,
		Mode:              ModeContinuous,
		Grid:              Grid{Width: 5, Height: 5},
		MovementThreshold: 3.0,
		FramePeriodUs:     16667,
		StepIntervalMs:    150,
		Marker:            Color{B: 100},
		Brightness:        1.0,
		Timing: Timing{
			T0HNs:   350,
			T0LNs:   800,
			T1HNs:   700,
			T1LNs:   600,
			ResetUs: 280,
		},
		SPI:    SPI{SpeedHz: 20_000_000},
		NRZ:    NRZ{SpeedHz: 2_500_000},
		Sensor: Sensor{Addr: 0x68},
		Sim:    Sim{TickHz: 40_000_000},
	}
}

// Load reads path over the defaults, so keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Driver {
	case DriverSPI, DriverNRZ, DriverSim:
	default:
		errs = append(errs, fmt.Errorf("unknown driver %q", c.Driver))
	}
	switch c.Mode {
	case ModeContinuous, ModeDiscrete:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if c.Grid.Width <= 0 || c.Grid.Height <= 0 {
		errs = append(errs, fmt.Errorf("grid %dx%d must be positive", c.Grid.Width, c.Grid.Height))
	}
	if c.MovementThreshold < 0 {
		errs = append(errs, fmt.Errorf("movement_threshold %v is negative", c.MovementThreshold))
	}
	if c.FramePeriodUs <= 0 {
		errs = append(errs, fmt.Errorf("frame_period_us %d must be positive", c.FramePeriodUs))
	}
	if c.StepIntervalMs < 0 {
		errs = append(errs, fmt.Errorf("step_interval_ms %d is negative", c.StepIntervalMs))
	}
	if c.Brightness < 0 || c.Brightness > 1 {
		errs = append(errs, fmt.Errorf("brightness %v outside 0..1", c.Brightness))
	}
	if err := c.WS2812Timing().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) MotionGrid() motion.Grid {
	return motion.Grid{Width: c.Grid.Width, Height: c.Grid.Height}
}

func (c *Config) WS2812Timing() ws2812.Timing {
	return ws2812.Timing{
		T0H:   time.Duration(c.Timing.T0HNs) * time.Nanosecond,
		T0L:   time.Duration(c.Timing.T0LNs) * time.Nanosecond,
		T1H:   time.Duration(c.Timing.T1HNs) * time.Nanosecond,
		T1L:   time.Duration(c.Timing.T1LNs) * time.Nanosecond,
		Reset: time.Duration(c.Timing.ResetUs) * time.Microsecond,
	}
}

func (c *Config) MarkerColor() model.Pixel {
	return model.RGB(c.Marker.R, c.Marker.G, c.Marker.B)
}

func (c *Config) FramePeriod() time.Duration {
	return time.Duration(c.FramePeriodUs) * time.Microsecond
}

func (c *Config) StepInterval() time.Duration {
	return time.Duration(c.StepIntervalMs) * time.Millisecond
}

func (c *Config) SPISpeed() physic.Frequency { return physic.Frequency(c.SPI.SpeedHz) * physic.Hertz }
func (c *Config) NRZSpeed() physic.Frequency { return physic.Frequency(c.NRZ.SpeedHz) * physic.Hertz }
func (c *Config) SimRate() physic.Frequency  { return physic.Frequency(c.Sim.TickHz) * physic.Hertz }
