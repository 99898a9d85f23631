package conn

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"periph.io/x/conn/v3/physic"

	"github.com/BeatGlow/ledstrip/internal/ioctl"
)

// SPIMode is the clock polarity and phase, as in <spi/spidev.h>.
type SPIMode uint8

// SPIMode0 samples on the rising edge with the clock idle low.
const SPIMode0 SPIMode = 0

// Definitions from <spi/spidev.h>
const (
	spiIOCMessage     = 0x6b00
	spiIOCMode        = 0x6b01
	spiIOCBitsPerWord = 0x6b03
	spiIOCMaxSpeedHz  = 0x6b04
)

const spiDevPath = "/dev/spidev"

// ErrClosed is returned by operations on a closed bus.
var ErrClosed = errors.New("conn: SPI bus is closed")

// spiIOCTransfer mirrors struct spi_ioc_transfer.
type spiIOCTransfer struct {
	txBuf          uint64
	rxBuf          uint64
	length         uint32
	speedHz        uint32
	delayUsecs     uint16
	bitsPerWord    uint8
	csChange       uint8
	txNbits        uint8
	rxNbits        uint8
	wordDelayUsecs uint8
	pad            uint8
}

// SPI implements the spidev interface.
type SPI struct {
	f           *os.File
	fd          uintptr
	path        string
	mode        SPIMode
	bitsPerWord uint8
	maxSpeedHz  uint32
}

// OpenSPI opens the numbered spi bus with the numbered device. The device often corresponds to the CS pin for that bus.
func OpenSPI(bus, device int) (*SPI, error) {
	return OpenSPIDev(spiDevName(bus, device))
}

func spiDevName(bus, device int) string {
	return fmt.Sprintf("%s%d.%d", spiDevPath, bus, device)
}

// OpenSPIDev opens a spidev character device by path, for example /dev/spidev0.0.
func OpenSPIDev(path string) (*SPI, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return &SPI{
		f:           f,
		fd:          f.Fd(),
		path:        path,
		bitsPerWord: 8,
	}, nil
}

func (c *SPI) Close() error {
	if c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f = nil
	return err
}

func (c *SPI) String() string {
	return fmt.Sprintf("SPI %s mode=%d bits per word=%d max speed=%s", c.path, c.mode, c.bitsPerWord, physic.Frequency(c.maxSpeedHz)*physic.Hertz)
}

func (c *SPI) Mode() SPIMode {
	return c.mode
}

func (c *SPI) SetMode(mode SPIMode) error {
	if c.f == nil {
		return ErrClosed
	}
	mode &= 0x0f

	if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Write, &mode, spiIOCMode), &mode); err != nil {
		return err
	}

	var test SPIMode
	if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, &test, spiIOCMode), &test); err != nil {
		return err
	}

	if test != mode {
		return fmt.Errorf("conn: SPI attempted to set mode %#02x, but mode %#02x is in use", mode, test)
	}

	c.mode = mode
	return nil
}

func (c *SPI) BitsPerWord() uint8 {
	return c.bitsPerWord
}

func (c *SPI) SetBitsPerWord(bits uint8) error {
	if bits < 8 || bits > 32 {
		return fmt.Errorf("conn: SPI bits per word need to be 8 or more and 32 or less, got %d", bits)
	}
	if c.f == nil {
		return ErrClosed
	}

	if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Write, &bits, spiIOCBitsPerWord), &bits); err != nil {
		return err
	}
	c.bitsPerWord = bits
	return nil
}

// SetMaxSpeed requests a bus clock. The driver may pick a lower one, use
// MaxSpeed to learn what it selected.
func (c *SPI) SetMaxSpeed(hz uint32) error {
	if c.f == nil {
		return ErrClosed
	}
	if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Write, &hz, spiIOCMaxSpeedHz), &hz); err != nil {
		return err
	}
	return nil
}

// MaxSpeed reads the bus clock back from the driver.
func (c *SPI) MaxSpeed() (uint32, error) {
	if c.f == nil {
		return 0, ErrClosed
	}
	var hz uint32
	if err := ioctl.Do(c.fd, ioctl.Pointer(ioctl.Read, &hz, spiIOCMaxSpeedHz), &hz); err != nil {
		return 0, err
	}
	c.maxSpeedHz = hz
	return hz, nil
}

// Tx sends b as a single transaction at the current clock and word size.
func (c *SPI) Tx(b []byte) (int, error) {
	if c.f == nil {
		return 0, ErrClosed
	}
	if len(b) == 0 {
		return 0, nil
	}

	tr := c.transfer(b)
	n, err := ioctl.DoN(c.fd, ioctl.Pointer(ioctl.Write, &tr, spiIOCMessage), &tr)
	runtime.KeepAlive(b)
	return n, err
}

// transfer describes a write of b at the negotiated clock and word size.
func (c *SPI) transfer(b []byte) spiIOCTransfer {
	return spiIOCTransfer{
		txBuf:       uint64(uintptr(unsafe.Pointer(&b[0]))),
		length:      uint32(len(b)),
		speedHz:     c.maxSpeedHz,
		bitsPerWord: c.bitsPerWord,
	}
}
