// Package config loads the strip configuration. Values are applied in order
// of precedence: command line flags, LEDSTRIP_* environment variables, the
// TOML file and finally the defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "ledstrip.toml"

const envPrefix = "LEDSTRIP_"

// Config describes the strip and how to drive it.
type Config struct {
	// Device is the SPI bus: a spidev path, a periph.io port name or "sim".
	Device string `toml:"device"`

	// LEDs is the strip length.
	LEDs int `toml:"leds"`

	// Interval between columns.
	Interval Duration `toml:"interval"`

	// ClockHz is the requested SPI clock.
	ClockHz uint32 `toml:"clock_hz"`

	// RequireRealtime aborts the run when real-time scheduling is denied.
	RequireRealtime bool `toml:"require_realtime"`

	// KeepGoing continues past failed updates.
	KeepGoing bool `toml:"keep_going"`

	// Fit scales images to the strip length instead of cropping them.
	Fit bool `toml:"fit"`

	Logging Logging `toml:"logging"`
}

// Logging settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration is a time.Duration written as a string such as "10ms".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default configuration: a 117 LED strip on the first spidev node, one
// column every 10ms.
func Default() Config {
	return Config{
		Device:          "/dev/spidev0.0",
		LEDs:            117,
		Interval:        Duration(10 * time.Millisecond),
		ClockHz:         12_000_000,
		RequireRealtime: true,
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate the configuration.
func (c *Config) Validate() error {
	if c.Device == "" {
		return errors.New("config: device is empty")
	}
	if c.LEDs <= 0 {
		return fmt.Errorf("config: leds must be positive, got %d", c.LEDs)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("config: interval must be positive, got %s", time.Duration(c.Interval))
	}
	return nil
}

// Load reads a TOML file over c. A missing file is not an error.
func Load(path string, c *Config) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}
	defer f.Close()

	if err = toml.NewDecoder(f).DisallowUnknownFields().Decode(c); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides c with LEDSTRIP_* variables found by lookup.
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	for _, v := range []struct {
		key string
		set func(string) error
	}{
		{"DEVICE", func(s string) error { c.Device = s; return nil }},
		{"LEDS", func(s string) (err error) { c.LEDs, err = strconv.Atoi(s); return }},
		{"INTERVAL", func(s string) error { return c.Interval.UnmarshalText([]byte(s)) }},
		{"CLOCK_HZ", func(s string) error {
			hz, err := strconv.ParseUint(s, 10, 32)
			c.ClockHz = uint32(hz)
			return err
		}},
		{"REQUIRE_REALTIME", func(s string) (err error) { c.RequireRealtime, err = strconv.ParseBool(s); return }},
		{"KEEP_GOING", func(s string) (err error) { c.KeepGoing, err = strconv.ParseBool(s); return }},
		{"FIT", func(s string) (err error) { c.Fit, err = strconv.ParseBool(s); return }},
		{"LOG_LEVEL", func(s string) error { c.Logging.Level = s; return nil }},
		{"LOG_FORMAT", func(s string) error { c.Logging.Format = s; return nil }},
	} {
		s, ok := lookup(envPrefix + v.key)
		if !ok || s == "" {
			continue
		}
		if err := v.set(s); err != nil {
			return fmt.Errorf("config: %s%s: %w", envPrefix, v.key, err)
		}
	}
	return nil
}

// Flags binds the configuration to command line flags.
type Flags struct {
	fs         *pflag.FlagSet
	path       string
	v          Config
	bestEffort bool
}

// AddFlags registers the configuration flags on fs.
func AddFlags(fs *pflag.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}
	fs.StringVarP(&f.path, "config", "c", DefaultPath, "Path to configuration file")
	fs.StringVarP(&f.v.Device, "device", "d", d.Device, "SPI device: spidev path, bus.device numbers, periph.io port name or \"sim\"")
	fs.IntVarP(&f.v.LEDs, "leds", "n", d.LEDs, "Number of LEDs on the strip")
	fs.DurationVarP((*time.Duration)(&f.v.Interval), "interval", "i", time.Duration(d.Interval), "Delay between columns")
	fs.Uint32Var(&f.v.ClockHz, "clock", d.ClockHz, "Requested SPI clock in Hz")
	fs.BoolVar(&f.bestEffort, "best-effort", false, "Continue without real-time scheduling if it is denied")
	fs.BoolVar(&f.v.KeepGoing, "keep-going", d.KeepGoing, "Continue after a failed strip update")
	fs.BoolVar(&f.v.Fit, "fit", d.Fit, "Scale the image height to the strip instead of cropping")
	fs.StringVar(&f.v.Logging.Level, "log-level", d.Logging.Level, "Logging level (debug, info, warn, error)")
	fs.StringVar(&f.v.Logging.Format, "log-format", d.Logging.Format, "Logging format (console, json)")
	return f
}

// Resolve builds the effective configuration after the flags were parsed.
func (f *Flags) Resolve(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	if err := Load(f.path, &c); err != nil {
		return c, err
	}
	if err := ApplyEnv(&c, lookup); err != nil {
		return c, err
	}

	changed := f.fs.Changed
	if changed("device") {
		c.Device = f.v.Device
	}
	if changed("leds") {
		c.LEDs = f.v.LEDs
	}
	if changed("interval") {
		c.Interval = f.v.Interval
	}
	if changed("clock") {
		c.ClockHz = f.v.ClockHz
	}
	if changed("best-effort") {
		c.RequireRealtime = !f.bestEffort
	}
	if changed("keep-going") {
		c.KeepGoing = f.v.KeepGoing
	}
	if changed("fit") {
		c.Fit = f.v.Fit
	}
	if changed("log-level") {
		c.Logging.Level = f.v.Logging.Level
	}
	if changed("log-format") {
		c.Logging.Format = f.v.Logging.Format
	}
	return c, c.Validate()
}
