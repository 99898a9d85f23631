package source

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/BeatGlow/ledstrip/draw"
)

// ErrEmptyText is returned when rendering an empty message.
var ErrEmptyText = errors.New("source: empty text")

var parseMono = sync.OnceValues(func() (*truetype.Font, error) {
	return freetype.ParseFont(gomono.TTF)
})

// Text renders msg in Go Mono on a black background, one row per LED. The
// glyphs fill about four fifths of height and the image is as wide as the
// text.
func Text(msg string, height int, fg color.Color) (*image.NRGBA, error) {
	if msg == "" {
		return nil, ErrEmptyText
	}
	if height <= 0 {
		return nil, errors.New("source: text height must be positive")
	}

	mono, err := parseMono()
	if err != nil {
		return nil, err
	}

	size := float64(height) * 0.8
	face := truetype.NewFace(mono, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	var (
		metrics  = face.Metrics()
		ascent   = metrics.Ascent.Ceil()
		descent  = metrics.Descent.Ceil()
		baseline = (height-ascent-descent)/2 + ascent
		width    = font.MeasureString(face, msg).Ceil()
	)
	if width < 1 {
		width = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Fill(dst, color.Black)

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(mono)
	c.SetFontSize(size)
	c.SetHinting(font.HintingFull)
	c.SetClip(dst.Bounds())
	c.SetDst(dst)
	c.SetSrc(image.NewUniform(fg))
	if _, err = c.DrawString(msg, freetype.Pt(0, baseline)); err != nil {
		return nil, err
	}
	return dst, nil
}
