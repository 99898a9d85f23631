package player

import (
	"context"
	"errors"
	"fmt"
	"image"

	"periph.io/x/conn/v3/physic"
)

// Errors
var (
	ErrUsage    = errors.New("player: expected exactly one image file")
	ErrRealtime = errors.New("player: real-time scheduling denied")
)

// Deps are the collaborators of Run.
type Deps struct {
	// Elevate switches to real-time scheduling.
	Elevate func() error

	// Decode loads the image file.
	Decode func(path string) (image.Image, error)
}

// Options for Run.
type Options struct {
	// Device is passed to Strip.Configure.
	Device string

	// RequireRealtime makes a failed Elevate fatal.
	RequireRealtime bool
}

// Run performs a complete sweep: switch to real-time scheduling, check the
// arguments, decode the image, configure the strip and play the image.
// Nothing touches the bus before the arguments and the image are valid.
func Run(ctx context.Context, p *Player, deps Deps, opts Options, args []string) error {
	if deps.Elevate != nil {
		if err := deps.Elevate(); err != nil {
			p.log.Warn().Err(err).Msg("failed to switch to real-time priority")
			if opts.RequireRealtime {
				return fmt.Errorf("%w: %w", ErrRealtime, err)
			}
		}
	}

	if len(args) != 1 {
		return ErrUsage
	}

	img, err := deps.Decode(args[0])
	if err != nil {
		return fmt.Errorf("player: read %s: %w", args[0], err)
	}
	size := img.Bounds().Size()
	p.log.Info().Str("file", args[0]).Int("width", size.X).Int("height", size.Y).Msg("read")
	if size.Y > p.strip.Len() {
		p.log.Debug().Int("rows", size.Y-p.strip.Len()).Msg("image taller than strip, rows cropped")
	}

	if err = p.strip.Configure(opts.Device); err != nil {
		return err
	}
	p.log.Info().
		Str("device", opts.Device).
		Stringer("clock", physic.Frequency(p.strip.Clock())*physic.Hertz).
		Msg("SPI configured")

	if err = p.Play(ctx, img); err != nil {
		return err
	}
	p.log.Info().Msg("done")
	return nil
}
