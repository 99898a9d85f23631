package pixel

import (
	"image"
	"image/color"
)

// Frame holds one color per LED, in strip order.
type Frame []Pixel

// NewFrame returns a dark frame of n pixels.
func NewFrame(n int) Frame {
	return make(Frame, n)
}

// Clear the frame.
func (f Frame) Clear() {
	for i := range f {
		f[i] = Black
	}
}

// Fill the frame with a single color.
func (f Frame) Fill(c color.Color) {
	p := FromColor(c)
	for i := range f {
		f[i] = p
	}
}

// Column fills the frame from column x of img, reading bottom to top: LED 0
// shows the lowest used row. Only the first len(f) rows of img are used, any
// LEDs beyond the image height are dark. The number of rows used is returned.
func (f Frame) Column(img image.Image, x int) int {
	b := img.Bounds()
	h := b.Dy()
	if h > len(f) {
		h = len(f)
	}

	x += b.Min.X
	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			i := src.PixOffset(x, b.Min.Y+h-1-y)
			f[y] = Pixel{R: src.Pix[i], G: src.Pix[i+1], B: src.Pix[i+2]}
		}
	default:
		for y := 0; y < h; y++ {
			f[y] = FromColor(img.At(x, b.Min.Y+h-1-y))
		}
	}

	for y := h; y < len(f); y++ {
		f[y] = Black
	}
	return h
}
