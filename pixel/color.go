package pixel

import "image/color"

// Model for the Pixel color type.
var Model color.Model = color.ModelFunc(pixelModel)

// Common colors.
var (
	Black = Pixel{}
	White = Pixel{R: 0xff, G: 0xff, B: 0xff}
	Red   = Pixel{R: 0xff}
	Green = Pixel{G: 0xff}
	Blue  = Pixel{B: 0xff}
)

// Pixel represents a 24-bit RGB color, one LED on the strip.
type Pixel struct {
	R, G, B uint8
}

func (c Pixel) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// FromColor converts c to a Pixel. The alpha channel is dropped without
// premultiplying, so a translucent red is still red.
func FromColor(c color.Color) Pixel {
	return pixelModel(c).(Pixel)
}

func pixelModel(c color.Color) color.Color {
	switch c := c.(type) {
	case Pixel:
		return c
	case color.NRGBA:
		return Pixel{R: c.R, G: c.G, B: c.B}
	case color.RGBA:
		if c.A == 0xff {
			return Pixel{R: c.R, G: c.G, B: c.B}
		}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Pixel{R: n.R, G: n.G, B: n.B}
}
