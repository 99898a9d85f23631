package ledstrip

import (
	"strconv"
	"strings"

	"github.com/BeatGlow/ledstrip/conn"
)

// DefaultDevice is the spidev node used when no device is given.
const DefaultDevice = "/dev/spidev0.0"

// SimDevice selects the in-memory bus.
const SimDevice = "sim"

// Bus is a SPI bus endpoint driving the strip.
type Bus interface {
	String() string

	// Close the bus.
	Close() error

	// Mode in use.
	Mode() conn.SPIMode

	// SetMode requests a SPI mode.
	SetMode(mode conn.SPIMode) error

	// BitsPerWord in use.
	BitsPerWord() uint8

	// SetBitsPerWord requests a word size.
	SetBitsPerWord(bits uint8) error

	// SetMaxSpeed requests a SPI clock.
	SetMaxSpeed(hz uint32) error

	// MaxSpeed reads back the clock the bus actually uses.
	MaxSpeed() (uint32, error)

	// Tx sends one transaction and returns the number of bytes transferred.
	Tx(w []byte) (int, error)
}

// Opener opens a bus by device name.
type Opener func(device string) (Bus, error)

// Open selects a backend by the form of the device name: a path below /dev
// opens spidev directly, as does a "bus.device" pair such as "0.1". "sim"
// returns an in-memory bus and any other name is looked up in the periph.io
// SPI registry.
func Open(device string) (Bus, error) {
	if bus, dev, ok := spiDevNumbers(device); ok {
		c, err := conn.OpenSPI(bus, dev)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	switch {
	case strings.HasPrefix(device, "/dev/"):
		c, err := conn.OpenSPIDev(device)
		if err != nil {
			return nil, err
		}
		return c, nil
	case device == SimDevice:
		return conn.NewSim(), nil
	default:
		c, err := conn.OpenPort(device)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Registered reports whether Open looks device up in the periph.io SPI
// registry, which needs host.Init first.
func Registered(device string) bool {
	_, _, numbered := spiDevNumbers(device)
	return !numbered && device != SimDevice && !strings.HasPrefix(device, "/dev/")
}

// spiDevNumbers parses a "bus.device" pair.
func spiDevNumbers(device string) (bus, dev int, ok bool) {
	b, d, found := strings.Cut(device, ".")
	if !found {
		return 0, 0, false
	}
	var err error
	if bus, err = strconv.Atoi(b); err != nil || bus < 0 {
		return 0, 0, false
	}
	if dev, err = strconv.Atoi(d); err != nil || dev < 0 {
		return 0, 0, false
	}
	return bus, dev, true
}
