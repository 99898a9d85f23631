// Package ledstrip drives an addressable RGB LED strip over SPI.
//
// Every update is sent as two transfers: the gamma corrected pixels in
// blue, red, green byte order, followed by an all-zero frame of the same
// length that latches the data into the LEDs.
package ledstrip

import (
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/ledstrip/conn"
	"github.com/BeatGlow/ledstrip/pixel"
)

// Fixed bus parameters.
const (
	DefaultClock = 12_000_000
	BitsPerWord  = 8
	Mode         = conn.SPIMode0
)

// bytesPerPixel on the wire.
const bytesPerPixel = 3

// Strip is a LED strip of fixed length on a SPI bus.
type Strip struct {
	count  int
	buf    []byte
	open   Opener
	bus    Bus
	device string
	clock  uint32
	dflt   uint32
	log    zerolog.Logger
}

// Option configures a Strip.
type Option func(*Strip)

// WithOpener replaces the function used to open the bus.
func WithOpener(open Opener) Option {
	return func(s *Strip) {
		s.open = open
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Strip) {
		s.log = log
	}
}

// WithClock sets the clock requested by Configure, DefaultClock if unset.
func WithClock(hz uint32) Option {
	return func(s *Strip) {
		if hz > 0 {
			s.dflt = hz
		}
	}
}

// New returns an unconfigured strip of count LEDs.
func New(count int, opts ...Option) *Strip {
	if count < 0 {
		count = 0
	}
	s := &Strip{
		count: count,
		buf:   make([]byte, count*bytesPerPixel),
		open:  Open,
		dflt:  DefaultClock,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len is the number of LEDs.
func (s *Strip) Len() int {
	return s.count
}

func (s *Strip) String() string {
	if s.bus == nil {
		return fmt.Sprintf("%d LED strip (not configured)", s.count)
	}
	return fmt.Sprintf("%d LED strip on %s", s.count, s.bus)
}

// Configure opens the device and sets up the bus: mode 0, 8 bits per word and
// the default clock. Any previously opened bus is closed first. On failure the
// strip is left unconfigured and a *ConfigError names the failed step.
func (s *Strip) Configure(device string) error {
	if err := s.Close(); err != nil {
		s.log.Warn().Err(err).Str("device", s.device).Msg("close previous bus")
	}

	bus, err := s.open(device)
	if err != nil {
		return &ConfigError{Step: StepOpen, Device: device, Err: err}
	}
	s.bus, s.device = bus, device

	if err = bus.SetMode(Mode); err != nil {
		return s.fail(StepMode, err)
	}
	if err = bus.SetBitsPerWord(BitsPerWord); err != nil {
		return s.fail(StepBitsPerWord, err)
	}
	if _, err = s.SetClock(s.dflt); err != nil {
		return s.fail(StepClock, err)
	}

	s.log.Debug().
		Str("device", device).
		Stringer("bus", bus).
		Stringer("clock", frequency(s.clock)).
		Msg("bus configured")
	return nil
}

func (s *Strip) fail(step Step, err error) error {
	device := s.device
	_ = s.Close()
	return &ConfigError{Step: step, Device: device, Err: err}
}

// Mode is the SPI mode of the configured bus.
func (s *Strip) Mode() conn.SPIMode {
	if s.bus == nil {
		return 0
	}
	return s.bus.Mode()
}

// BitsPerWord is the word size of the configured bus, 0 if unconfigured.
func (s *Strip) BitsPerWord() uint8 {
	if s.bus == nil {
		return 0
	}
	return s.bus.BitsPerWord()
}

// SetClock requests a bus clock and returns the clock the hardware selected,
// which is what Clock reports from then on. On failure the clock becomes 0.
// A read-back of 0 is a failure (ErrNoClock).
func (s *Strip) SetClock(hz uint32) (uint32, error) {
	if s.bus == nil {
		return 0, ErrNoDevice
	}
	if err := s.bus.SetMaxSpeed(hz); err != nil {
		s.clock = 0
		return 0, err
	}
	actual, err := s.bus.MaxSpeed()
	if err == nil && actual == 0 {
		err = ErrNoClock
	}
	if err != nil {
		s.clock = 0
		return 0, err
	}
	s.clock = actual
	return actual, nil
}

// Clock is the last negotiated bus clock in Hz, 0 if unknown.
func (s *Strip) Clock() uint32 {
	return s.clock
}

// Update shows a frame. The frame must hold exactly Len pixels.
func (s *Strip) Update(frame pixel.Frame) error {
	if s.bus == nil {
		return ErrNoDevice
	}
	if len(frame) != s.count {
		return fmt.Errorf("%w: got %d pixels, want %d", ErrFrameLength, len(frame), s.count)
	}

	encode(s.buf, frame)
	if err := s.send(PhaseData); err != nil {
		return err
	}

	for i := range s.buf {
		s.buf[i] = 0
	}
	return s.send(PhaseLatch)
}

func (s *Strip) send(phase Phase) error {
	n, err := s.bus.Tx(s.buf)
	if err == nil && n <= 0 {
		err = fmt.Errorf("%d bytes transferred", n)
	}
	if err != nil {
		return &TransferError{Phase: phase, Err: err}
	}
	return nil
}

// Close releases the bus. The strip can be configured again afterwards.
func (s *Strip) Close() error {
	if s.bus == nil {
		return nil
	}
	err := s.bus.Close()
	s.bus, s.clock = nil, 0
	return err
}

// encode writes the corrected frame in wire order: blue, red, green.
func encode(dst []byte, frame pixel.Frame) {
	for i, p := range frame {
		o := dst[i*bytesPerPixel : i*bytesPerPixel+bytesPerPixel : i*bytesPerPixel+bytesPerPixel]
		o[0] = Correct(p.B)
		o[1] = Correct(p.R)
		o[2] = Correct(p.G)
	}
}

func frequency(hz uint32) physic.Frequency {
	return physic.Frequency(hz) * physic.Hertz
}
