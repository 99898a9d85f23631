// Package draw has the drawing helpers used to prepare images for the strip.
package draw

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Image is an alias for [image/draw.Image].
type Image = draw.Image

// Fill dst with a single color.
func Fill(dst Image, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// FitHeight scales src so that its height is h, keeping the aspect ratio.
// The result is at least one pixel wide.
func FitHeight(src image.Image, h int) *image.NRGBA {
	b := src.Bounds()
	w := 1
	if b.Dy() > 0 {
		w = (b.Dx()*h + b.Dy()/2) / b.Dy()
	}
	if w < 1 {
		w = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}
