// Command ledstrip sweeps an image across an SPI LED strip, one column at a
// time, for light painting.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/ledstrip"
	"github.com/BeatGlow/ledstrip/internal/config"
	"github.com/BeatGlow/ledstrip/internal/logging"
	"github.com/BeatGlow/ledstrip/internal/realtime"
	"github.com/BeatGlow/ledstrip/player"
	"github.com/BeatGlow/ledstrip/source"
)

func main() {
	// Real-time priority applies to the calling thread only.
	runtime.LockOSThread()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := new(app)
	err := newRootCommand(a).ExecuteContext(ctx)
	stop()
	if a.strip != nil {
		if cerr := a.strip.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		fatal(err)
	}
}

type app struct {
	flags  *config.Flags
	cfg    config.Config
	log    zerolog.Logger
	strip  *ledstrip.Strip
	player *player.Player
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledstrip [flags] <image>",
		Short:         "Sweep an image across an SPI LED strip",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sweep(cmd.Context(), args, a.decode)
		},
	}
	a.flags = config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "text <message>",
			Short: "Render a message in Go Mono and sweep it",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				msg := strings.Join(args, " ")
				return a.sweep(cmd.Context(), []string{msg}, func(string) (image.Image, error) {
					return source.Text(msg, a.cfg.LEDs, color.White)
				})
			},
		},
		newPatternCommand(a),
		&cobra.Command{
			Use:   "blank",
			Short: "Turn all LEDs off",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.strip.Configure(a.cfg.Device); err != nil {
					return err
				}
				return a.player.Blank()
			},
		},
		&cobra.Command{
			Use:   "probe",
			Short: "Configure the bus and print the negotiated parameters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.strip.Configure(a.cfg.Device); err != nil {
					return err
				}
				fmt.Printf("using strip: %s\n", a.strip)
				fmt.Printf("using mode: %d\n", a.strip.Mode())
				fmt.Printf("using bits per word: %d\n", a.strip.BitsPerWord())
				fmt.Printf("using clock: %s\n", physic.Frequency(a.strip.Clock())*physic.Hertz)
				return nil
			},
		},
	)
	return root
}

func newPatternCommand(a *app) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Sweep a generated test pattern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.sweep(cmd.Context(), []string{"pattern"}, func(string) (image.Image, error) {
				return source.Pattern(width, a.cfg.LEDs)
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 64, "Pattern width in columns")
	return cmd
}

// setup resolves the configuration and builds the strip and the player.
func (a *app) setup() (err error) {
	if a.cfg, err = a.flags.Resolve(os.LookupEnv); err != nil {
		return err
	}
	if a.log, err = logging.New(a.cfg.Logging.Level, a.cfg.Logging.Format, os.Stderr); err != nil {
		return err
	}

	if ledstrip.Registered(a.cfg.Device) {
		if _, err := host.Init(); err != nil {
			a.log.Warn().Err(err).Msg("periph.io host initialization failed")
		}
	}

	a.strip = ledstrip.New(a.cfg.LEDs,
		ledstrip.WithClock(a.cfg.ClockHz),
		ledstrip.WithLogger(a.log))
	a.player = player.New(a.strip,
		player.WithInterval(a.cfg.Interval.Std()),
		player.WithProgress(os.Stdout),
		player.WithKeepGoing(a.cfg.KeepGoing),
		player.WithLogger(a.log))
	return nil
}

func (a *app) decode(path string) (image.Image, error) {
	img, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	if a.cfg.Fit {
		img = source.Fit(img, a.cfg.LEDs)
	}
	return img, nil
}

func (a *app) sweep(ctx context.Context, args []string, decode func(string) (image.Image, error)) error {
	err := player.Run(ctx, a.player, player.Deps{
		Elevate: realtime.Elevate,
		Decode:  decode,
	}, player.Options{
		Device:          a.cfg.Device,
		RequireRealtime: a.cfg.RequireRealtime,
	}, args)
	if err != nil {
		return err
	}
	fmt.Println("\nDONE")
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	if errors.Is(err, player.ErrUsage) {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <image>\n", os.Args[0])
	}

	var cerr *ledstrip.ConfigError
	if errors.As(err, &cerr) {
		os.Exit(cerr.Code())
	}
	os.Exit(1)
}
