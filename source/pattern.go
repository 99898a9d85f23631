package source

import (
	"fmt"
	"image"
	"image/color"

	"github.com/BeatGlow/ledstrip/draw"
)

// MinPatternWidth is the narrowest test pattern.
const MinPatternWidth = 4

// Pattern returns a test pattern: one red, one green and one blue column,
// followed by a rainbow with a white diagonal line across it.
func Pattern(width, height int) (*image.NRGBA, error) {
	if width < MinPatternWidth || height <= 0 {
		return nil, fmt.Errorf("source: pattern must be at least %dx1, got %dx%d", MinPatternWidth, width, height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x, c := range []color.NRGBA{
		{R: 0xff, A: 0xff},
		{G: 0xff, A: 0xff},
		{B: 0xff, A: 0xff},
	} {
		draw.VerticalLine(img, x, 0, height, c)
	}

	rainbow := width - 3
	for x := 3; x < width; x++ {
		draw.VerticalLine(img, x, 0, height, hue(float64(x-3)/float64(rainbow)))
	}
	draw.Line(img, image.Pt(3, height-1), image.Pt(width-1, 0), color.White)
	return img, nil
}

// hue returns the fully saturated color at h, where 0 and 1 are red.
func hue(h float64) color.NRGBA {
	h -= float64(int(h))
	var (
		i = int(h * 6)
		f = h*6 - float64(i)
		q = uint8(0xff * (1 - f))
		t = uint8(0xff * f)
	)
	switch i {
	case 0:
		return color.NRGBA{R: 0xff, G: t, A: 0xff}
	case 1:
		return color.NRGBA{R: q, G: 0xff, A: 0xff}
	case 2:
		return color.NRGBA{G: 0xff, B: t, A: 0xff}
	case 3:
		return color.NRGBA{G: q, B: 0xff, A: 0xff}
	case 4:
		return color.NRGBA{R: t, B: 0xff, A: 0xff}
	default:
		return color.NRGBA{R: 0xff, B: q, A: 0xff}
	}
}
