package model

import (
	"image/color"
	"math"
)

// Bit offsets of each channel inside the 24-bit word a WS2812-class LED
// expects on the wire: green first, then red, then blue.
const (
	GREEN_OFFSET uint8 = 0x10
	RED_OFFSET   uint8 = 0x08
	BLUE_OFFSET  uint8 = 0x0
)

// Pixel is one addressable RGB element.
type Pixel struct {
	R, G, B uint8
}

var Black = Pixel{}

// RGB builds a Pixel, clamping every channel to [0,255].
func RGB(r, g, b int) Pixel {
	return Pixel{R: clamp8(r), G: clamp8(g), B: clamp8(b)}
}

func clamp8(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Word packs the pixel as transmitted: G in bits 23-16, R in 15-8, B in 7-0.
func (p Pixel) Word() uint32 {
	return uint32(p.G)<<GREEN_OFFSET | uint32(p.R)<<RED_OFFSET | uint32(p.B)<<BLUE_OFFSET
}

// FromWord is the inverse of Word.
func FromWord(w uint32) Pixel {
	return Pixel{
		G: getcolor(w, GREEN_OFFSET),
		R: getcolor(w, RED_OFFSET),
		B: getcolor(w, BLUE_OFFSET),
	}
}

func getcolor(c uint32, off uint8) uint8 {
	var mask uint32 = 0xFF << off
	return uint8((c & mask) >> off)
}

// Scale multiplies every channel by s, rounding and clamping the result.
func (p Pixel) Scale(s float64) Pixel {
	if s < 0 {
		s = 0
	}
	return RGB(
		int(math.Round(float64(p.R)*s)),
		int(math.Round(float64(p.G)*s)),
		int(math.Round(float64(p.B)*s)),
	)
}

func (p Pixel) ToNRGBA() color.NRGBA {
	return color.NRGBA{R: p.R, G: p.G, B: p.B, A: 255}
}

func (p Pixel) IsBlack() bool {
	return p == Black
}
