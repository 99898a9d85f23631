// Package source produces the images swept across the strip: decoded files,
// rendered text and test patterns.
package source

import (
	"fmt"
	"image"
	"os"

	// Image formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/BeatGlow/ledstrip/draw"
)

// Load decodes the image file at path. The format is detected from the
// file contents.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("source: %s: %w", path, err)
	}
	return img, nil
}

// Fit scales img to a height of n rows. Images that already have the right
// height are returned as is.
func Fit(img image.Image, n int) image.Image {
	if n <= 0 || img.Bounds().Dy() == n {
		return img
	}
	return draw.FitHeight(img, n)
}
