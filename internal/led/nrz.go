package led

import (
	"fmt"
	"image"
	"io"

	"github.com/coreman2200/tiltgrid/internal/ws2812"
	"github.com/coreman2200/tiltgrid/model"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"
)

// DefaultNRZSpeed is 3 SPI bits per NRZ bit at 800kHz plus headroom.
const DefaultNRZSpeed = (800*3 + 100) * physic.KiloHertz

// NRZ renders through periph's nrzled driver, which does its own SPI bit
// expansion instead of going through the pulse encoder.
type NRZ struct {
	dev  *nrzled.Dev
	port spi.Port
}

func NewNRZ(p spi.Port, numPixels int, freq physic.Frequency) (*NRZ, error) {
	if numPixels <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", numPixels)
	}
	if freq <= 0 {
		freq = DefaultNRZSpeed
	}
	opts := nrzled.Opts{
		NumPixels: numPixels,
		Channels:  3,
		Freq:      freq,
	}
	d, err := nrzled.NewSPI(p, &opts)
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &NRZ{dev: d, port: p}, nil
}

func (n *NRZ) String() string {
	return n.dev.String()
}

func (n *NRZ) Show(fb *model.FrameBuffer) error {
	if err := n.dev.Draw(n.dev.Bounds(), fb.Image(), image.Point{}); err != nil {
		return &ws2812.HardwareError{Op: "nrz draw", Err: err}
	}
	return nil
}

// Close blanks the strip and releases the port.
func (n *NRZ) Close() error {
	err := n.dev.Halt()
	if c, ok := n.port.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
