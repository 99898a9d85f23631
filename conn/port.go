package conn

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// Port is a bus backed by a periph.io SPI port, for hosts where the SPI
// controller is registered through periph.io/x/host instead of being used
// through a spidev node directly.
//
// periph.io connects a port exactly once, so the mode and word size must be
// set before the first clock request or transfer. The driver does not report
// the clock it selected, MaxSpeed returns the requested one.
type Port struct {
	port        spi.PortCloser
	conn        spi.Conn
	mode        SPIMode
	bitsPerWord uint8
	maxSpeedHz  uint32
}

// OpenPort opens a port from the periph.io registry by name, for example
// "SPI0.0". An empty name selects the first registered port.
func OpenPort(name string) (*Port, error) {
	p, err := spireg.Open(name)
	if err != nil {
		return nil, err
	}
	return NewPort(p), nil
}

// NewPort wraps an already opened periph.io port.
func NewPort(p spi.PortCloser) *Port {
	return &Port{
		port:        p,
		bitsPerWord: 8,
	}
}

func (c *Port) String() string {
	if c.port == nil {
		return "SPI port (closed)"
	}
	return fmt.Sprintf("SPI port %s mode=%d bits per word=%d max speed=%s", c.port, c.mode, c.bitsPerWord, physic.Frequency(c.maxSpeedHz)*physic.Hertz)
}

func (c *Port) Close() error {
	if c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port, c.conn = nil, nil
	return err
}

func (c *Port) Mode() SPIMode {
	return c.mode
}

func (c *Port) BitsPerWord() uint8 {
	return c.bitsPerWord
}

func (c *Port) SetMode(mode SPIMode) error {
	if c.port == nil {
		return ErrClosed
	}
	mode &= 0x0f
	if c.conn != nil && mode != c.mode {
		return fmt.Errorf("conn: SPI port %s is connected with mode %#02x", c.port, c.mode)
	}
	c.mode = mode
	return nil
}

func (c *Port) SetBitsPerWord(bits uint8) error {
	if c.port == nil {
		return ErrClosed
	}
	if bits < 8 || bits > 32 {
		return fmt.Errorf("conn: SPI bits per word need to be 8 or more and 32 or less, got %d", bits)
	}
	if c.conn != nil && bits != c.bitsPerWord {
		return fmt.Errorf("conn: SPI port %s is connected with %d bits per word", c.port, c.bitsPerWord)
	}
	c.bitsPerWord = bits
	return nil
}

func (c *Port) SetMaxSpeed(hz uint32) error {
	if c.port == nil {
		return ErrClosed
	}
	f := physic.Frequency(hz) * physic.Hertz
	if err := c.port.LimitSpeed(f); err != nil {
		return err
	}
	if c.conn == nil {
		if err := c.connect(f); err != nil {
			return err
		}
	}
	c.maxSpeedHz = hz
	return nil
}

func (c *Port) MaxSpeed() (uint32, error) {
	if c.port == nil {
		return 0, ErrClosed
	}
	return c.maxSpeedHz, nil
}

func (c *Port) Tx(b []byte) (int, error) {
	if c.port == nil {
		return 0, ErrClosed
	}
	if c.conn == nil {
		if err := c.connect(physic.Frequency(c.maxSpeedHz) * physic.Hertz); err != nil {
			return 0, err
		}
	}
	if len(b) == 0 {
		return 0, nil
	}
	if err := c.conn.Tx(b, nil); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (c *Port) connect(f physic.Frequency) (err error) {
	c.conn, err = c.port.Connect(f, spi.Mode(c.mode), int(c.bitsPerWord))
	return
}
