package conn

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Sim is an in-memory bus. It accepts every request and keeps a copy of the
// last transfer, which makes it usable for dry runs without hardware.
type Sim struct {
	closed      bool
	mode        SPIMode
	bitsPerWord uint8
	maxSpeedHz  uint32

	// Transfers counts the transactions sent so far.
	Transfers int

	// Last is a copy of the most recent transaction.
	Last []byte
}

// NewSim returns an open simulated bus.
func NewSim() *Sim {
	return &Sim{bitsPerWord: 8}
}

func (c *Sim) String() string {
	return fmt.Sprintf("SPI simulator mode=%d bits per word=%d max speed=%s", c.mode, c.bitsPerWord, physic.Frequency(c.maxSpeedHz)*physic.Hertz)
}

func (c *Sim) Close() error {
	c.closed = true
	return nil
}

func (c *Sim) Mode() SPIMode {
	return c.mode
}

func (c *Sim) BitsPerWord() uint8 {
	return c.bitsPerWord
}

func (c *Sim) SetMode(mode SPIMode) error {
	if c.closed {
		return ErrClosed
	}
	c.mode = mode & 0x0f
	return nil
}

func (c *Sim) SetBitsPerWord(bits uint8) error {
	if c.closed {
		return ErrClosed
	}
	c.bitsPerWord = bits
	return nil
}

func (c *Sim) SetMaxSpeed(hz uint32) error {
	if c.closed {
		return ErrClosed
	}
	c.maxSpeedHz = hz
	return nil
}

func (c *Sim) MaxSpeed() (uint32, error) {
	if c.closed {
		return 0, ErrClosed
	}
	return c.maxSpeedHz, nil
}

func (c *Sim) Tx(b []byte) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}
	c.Transfers++
	c.Last = append(c.Last[:0], b...)
	return len(b), nil
}
