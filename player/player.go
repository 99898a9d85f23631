// Package player sweeps an image across an LED strip one column at a time.
package player

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/BeatGlow/ledstrip/pixel"
)

// DefaultInterval between columns.
const DefaultInterval = 10 * time.Millisecond

// Strip is the part of ledstrip.Strip the player uses.
type Strip interface {
	Configure(device string) error
	Clock() uint32
	Update(pixel.Frame) error
	Len() int
}

// Player shows images on a strip, column by column.
type Player struct {
	strip     Strip
	interval  time.Duration
	sleep     func(time.Duration)
	now       func() time.Time
	progress  io.Writer
	keepGoing bool
	log       zerolog.Logger
}

// Option configures a Player.
type Option func(*Player)

// WithInterval sets the delay after each column.
func WithInterval(d time.Duration) Option {
	return func(p *Player) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock replaces the time source and the sleep function.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(p *Player) {
		p.now, p.sleep = now, sleep
	}
}

// WithProgress writes a dot per shown column to w.
func WithProgress(w io.Writer) Option {
	return func(p *Player) {
		p.progress = w
	}
}

// WithKeepGoing continues after a failed update instead of stopping.
func WithKeepGoing(v bool) Option {
	return func(p *Player) {
		p.keepGoing = v
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Player) {
		p.log = log
	}
}

// New returns a player for strip.
func New(strip Strip, opts ...Option) *Player {
	p := &Player{
		strip:    strip,
		interval: DefaultInterval,
		sleep:    time.Sleep,
		now:      time.Now,
		progress: io.Discard,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play shows img from left to right. Each column is shown bottom to top,
// the image rows beyond the strip length are not shown. After every column
// the player waits for the full interval, and after the last column it
// turns the strip dark.
//
// The context is only checked between columns. Unless keep going is set,
// the first failed update ends the run.
func (p *Player) Play(ctx context.Context, img image.Image) error {
	var (
		frame = pixel.NewFrame(p.strip.Len())
		width = img.Bounds().Dx()
		errs  []error
	)
	for x := 0; x < width; x++ {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		frame.Column(img, x)
		if err := p.strip.Update(frame); err != nil {
			if !p.keepGoing {
				errs = append(errs, fmt.Errorf("player: column %d: %w", x, err))
				break
			}
			p.log.Warn().Err(err).Int("column", x).Msg("update failed")
			errs = append(errs, fmt.Errorf("player: column %d: %w", x, err))
		}

		_, _ = io.WriteString(p.progress, ".")
		p.wait(p.interval)
	}

	if err := p.Blank(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Blank turns all LEDs off.
func (p *Player) Blank() error {
	if err := p.strip.Update(pixel.NewFrame(p.strip.Len())); err != nil {
		return fmt.Errorf("player: blank: %w", err)
	}
	return nil
}

// wait blocks for d of wall-clock time, sleeping again for the remainder
// when woken early.
func (p *Player) wait(d time.Duration) {
	deadline := p.now().Add(d)
	for {
		remaining := deadline.Sub(p.now())
		if remaining <= 0 {
			return
		}
		p.sleep(remaining)
	}
}
