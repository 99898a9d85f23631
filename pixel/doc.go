// Package pixel implements the color and frame types used to drive an LED strip.
//
// This package provides a color model compatible with Go's native [color.Color]
// and a Frame type holding one strip's worth of pixels, which can be filled from
// a column of any [image.Image].
package pixel
