package led

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/coreman2200/tiltgrid/internal/ws2812"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// DefaultSPISpeed gives 50ns ticks: 7/16 ticks for a zero, 14/12 for a one.
const DefaultSPISpeed = 20 * physic.MegaHertz

var ErrClosed = errors.New("led: transmitter closed")

// SPI drives the data line from MOSI, using the SPI clock as the pulse
// tick: every tick of every edge becomes one bit on the wire, MSB first.
// A low tail of at least the reset period is appended so the frame latches,
// and frame plus tail go out in a single transfer.
type SPI struct {
	mu    sync.Mutex
	port  spi.Port
	c     spi.Conn
	speed physic.Frequency
	reset time.Duration
	buf   []byte
}

// NewSPI connects to p in mode 0 with 8-bit words. speed is the tick rate
// of the generated pulse train; reset is the latch period.
func NewSPI(p spi.Port, speed physic.Frequency, reset time.Duration) (*SPI, error) {
	if speed <= 0 {
		speed = DefaultSPISpeed
	}
	if reset < 0 {
		return nil, fmt.Errorf("invalid reset period: %s", reset)
	}
	c, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("spi connect: %w", err)
	}
	return &SPI{port: p, c: c, speed: speed, reset: reset}, nil
}

func (s *SPI) String() string {
	return fmt.Sprintf("led.SPI{%s}", s.speed)
}

func (s *SPI) TickRate() (physic.Frequency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return 0, ErrClosed
	}
	return s.speed, nil
}

func (s *SPI) Transmit(edges []ws2812.PulseEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return ErrClosed
	}

	s.buf = s.pack(s.buf[:0], edges)
	if l, ok := s.c.(conn.Limits); ok {
		if limit := l.MaxTxSize(); limit > 0 && len(s.buf) > limit {
			return fmt.Errorf("frame of %d bytes exceeds the %d byte transfer limit", len(s.buf), limit)
		}
	}
	if err := s.c.Tx(s.buf, nil); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

func (s *SPI) resetBytes() int {
	hz := int64(s.speed / physic.Hertz)
	bits := s.reset.Nanoseconds() * hz / int64(time.Second)
	return int((bits + 7) / 8)
}

// pack expands edges into MOSI bits and appends the latch tail.
func (s *SPI) pack(dst []byte, edges []ws2812.PulseEdge) []byte {
	var cur byte
	var n uint
	for _, e := range edges {
		for i := uint32(0); i < e.Ticks; i++ {
			cur <<= 1
			if e.Level == gpio.High {
				cur |= 1
			}
			n++
			if n == 8 {
				dst = append(dst, cur)
				cur, n = 0, 0
			}
		}
	}
	if n > 0 {
		dst = append(dst, cur<<(8-n))
	}
	for i := s.resetBytes(); i > 0; i-- {
		dst = append(dst, 0)
	}
	return dst
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return nil
	}
	s.c = nil
	if c, ok := s.port.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
