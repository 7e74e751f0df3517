package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/tiltgrid/internal/motion"
	"github.com/coreman2200/tiltgrid/internal/ws2812"
	"github.com/coreman2200/tiltgrid/model"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, ws2812.DefaultTiming(), c.WS2812Timing())
	assert.Equal(t, motion.Grid{Width: 5, Height: 5}, c.MotionGrid())
	assert.Equal(t, model.Pixel{B: 100}, c.MarkerColor())
	assert.Equal(t, 16667*time.Microsecond, c.FramePeriod())
	assert.Equal(t, 150*time.Millisecond, c.StepInterval())
	assert.Equal(t, 20*physic.MegaHertz, c.SPISpeed())
	assert.Equal(t, 40*physic.MegaHertz, c.SimRate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	p := writeFile(t, `
driver: spi
mode: discrete
grid:
  width: 8
  height: 4
marker: {r: 10, g: 300}
timing:
  reset_us: 300
sensor:
  addr: 0x69
`)
	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, DriverSPI, c.Driver)
	assert.Equal(t, ModeDiscrete, c.Mode)
	assert.Equal(t, motion.Grid{Width: 8, Height: 4}, c.MotionGrid())
	assert.Equal(t, model.Pixel{R: 10, G: 255, B: 100}, c.MarkerColor(), "g clamps, b keeps its default")
	assert.Equal(t, 300*time.Microsecond, c.WS2812Timing().Reset)
	assert.Equal(t, 350*time.Nanosecond, c.WS2812Timing().T0H, "unset keys keep defaults")
	assert.EqualValues(t, 0x69, c.Sensor.Addr)
	assert.Equal(t, 3.0, c.MovementThreshold)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, body := range map[string]string{
		"driver":     "driver: pwm\n",
		"mode":       "mode: sideways\n",
		"grid":       "grid: {width: 0}\n",
		"timing":     "timing: {t0h_ns: 800, t1h_ns: 700}\n",
		"brightness": "brightness: 2\n",
		"period":     "frame_period_us: 0\n",
		"yaml":       "grid: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMarkerChannelsOverrideIndividually(t *testing.T) {
	c, err := Load(writeFile(t, "marker: {r: 40}\n"))
	require.NoError(t, err)
	assert.Equal(t, model.Pixel{R: 40, B: 100}, c.MarkerColor())

	c, err = Load(writeFile(t, "marker: {r: 40, b: 0}\n"))
	require.NoError(t, err)
	assert.Equal(t, model.Pixel{R: 40}, c.MarkerColor())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveRoundTrip(t *testing.T) {
	c := Default()
	c.Mode = ModeDiscrete
	c.Grid.Width = 7
	p := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, Save(p, c))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}
