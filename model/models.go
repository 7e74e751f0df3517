package model

import (
	"errors"
	"image"
)

var ErrInvalidDimensions = errors.New("model: frame buffer dimensions must be positive")

// FrameBuffer is a fixed-size grid of pixels stored row-major. The storage
// order is the order pixels are shifted out to the display, so index
// y*width+x must match the physical wiring.
type FrameBuffer struct {
	width  int
	height int
	pixels []Pixel
}

// NewFrameBuffer returns an all-black width x height grid.
func NewFrameBuffer(width, height int) (*FrameBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &FrameBuffer{
		width:  width,
		height: height,
		pixels: make([]Pixel, width*height),
	}, nil
}

func (f *FrameBuffer) Width() int  { return f.width }
func (f *FrameBuffer) Height() int { return f.height }
func (f *FrameBuffer) Len() int    { return len(f.pixels) }

// Clear resets every pixel to black.
func (f *FrameBuffer) Clear() {
	for i := range f.pixels {
		f.pixels[i] = Black
	}
}

func (f *FrameBuffer) Contains(x, y int) bool {
	return x >= 0 && x < f.width && y >= 0 && y < f.height
}

// SetAt writes c at (x,y). Writes outside the grid are dropped without
// error; the return value reports whether the pixel was written.
func (f *FrameBuffer) SetAt(x, y int, c Pixel) bool {
	if !f.Contains(x, y) {
		return false
	}
	f.pixels[y*f.width+x] = c
	return true
}

// At returns the pixel at (x,y), or black outside the grid.
func (f *FrameBuffer) At(x, y int) Pixel {
	if !f.Contains(x, y) {
		return Black
	}
	return f.pixels[y*f.width+x]
}

// Pixels exposes the backing slice in transmission order. Callers must not
// retain it across ticks.
func (f *FrameBuffer) Pixels() []Pixel {
	return f.pixels
}

// Image flattens the grid into a len x 1 strip, the shape periph's NRZ
// drivers expect.
func (f *FrameBuffer) Image() *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, len(f.pixels), 1))
	for x := 0; x < im.Rect.Max.X; x++ {
		im.SetNRGBA(x, 0, f.pixels[x].ToNRGBA())
	}
	return im
}
