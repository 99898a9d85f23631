package draw

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func count(img *image.NRGBA, c color.NRGBA) (n int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y) == c {
				n++
			}
		}
	}
	return
}

func TestLine(t *testing.T) {
	on := color.NRGBA{R: 0xff, A: 0xff}
	tests := []struct {
		name string
		a, b image.Point
		want []image.Point
	}{
		{"point", image.Pt(1, 1), image.Pt(1, 1), []image.Point{{1, 1}}},
		{"horizontal", image.Pt(0, 2), image.Pt(3, 2), []image.Point{{0, 2}, {1, 2}, {2, 2}, {3, 2}}},
		{"vertical reversed", image.Pt(2, 3), image.Pt(2, 0), []image.Point{{2, 0}, {2, 1}, {2, 2}, {2, 3}}},
		{"diagonal", image.Pt(0, 0), image.Pt(3, 3), []image.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}},
		{"anti diagonal", image.Pt(3, 0), image.Pt(0, 3), []image.Point{{3, 0}, {2, 1}, {1, 2}, {0, 3}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
			Line(img, test.a, test.b, on)
			for _, p := range test.want {
				assert.Equal(t, on, img.NRGBAAt(p.X, p.Y), "pixel %s", p)
			}
			assert.Equal(t, len(test.want), count(img, on))
		})
	}
}

func TestLineSteep(t *testing.T) {
	on := color.NRGBA{G: 0xff, A: 0xff}
	img := image.NewNRGBA(image.Rect(0, 0, 3, 10))
	Line(img, image.Pt(0, 0), image.Pt(2, 9), on)

	// One pixel per row on a steep line.
	for y := 0; y < 10; y++ {
		n := 0
		for x := 0; x < 3; x++ {
			if img.NRGBAAt(x, y) == on {
				n++
			}
		}
		assert.Equal(t, 1, n, "row %d", y)
	}
}

func TestFitHeight(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	Fill(src, color.NRGBA{B: 0xff, A: 0xff})

	dst := FitHeight(src, 117)
	assert.Equal(t, image.Pt(234, 117), dst.Bounds().Size())
	assert.Equal(t, color.NRGBA{B: 0xff, A: 0xff}, dst.NRGBAAt(100, 60))

	thin := FitHeight(image.NewNRGBA(image.Rect(0, 0, 1, 500)), 10)
	assert.Equal(t, image.Pt(1, 10), thin.Bounds().Size())
}
