package ledstrip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeatGlow/ledstrip/conn"
	"github.com/BeatGlow/ledstrip/pixel"
)

const testCount = 117

var errBus = errors.New("bus error")

// fakeBus records everything a Strip asks of it.
type fakeBus struct {
	name   string
	closed bool

	mode  conn.SPIMode
	bits  uint8
	speed uint32

	// actual is what MaxSpeed reports, the requested speed if zero.
	actual uint32

	failMode, failBits, failSpeed, failReadSpeed bool

	// zeroReadSpeed makes MaxSpeed report 0 without an error.
	zeroReadSpeed bool

	// failTx fails the transfer with the given index.
	failTx int
	// short makes the failing transfer report 0 bytes instead of an error.
	short bool

	tx [][]byte
}

func (b *fakeBus) String() string { return b.name }

func (b *fakeBus) Close() error {
	b.closed = true
	return nil
}

func (b *fakeBus) Mode() conn.SPIMode { return b.mode }

func (b *fakeBus) BitsPerWord() uint8 { return b.bits }

func (b *fakeBus) SetMode(mode conn.SPIMode) error {
	if b.failMode {
		return errBus
	}
	b.mode = mode
	return nil
}

func (b *fakeBus) SetBitsPerWord(bits uint8) error {
	if b.failBits {
		return errBus
	}
	b.bits = bits
	return nil
}

func (b *fakeBus) SetMaxSpeed(hz uint32) error {
	if b.failSpeed {
		return errBus
	}
	b.speed = hz
	return nil
}

func (b *fakeBus) MaxSpeed() (uint32, error) {
	if b.failReadSpeed {
		return 0, errBus
	}
	if b.zeroReadSpeed {
		return 0, nil
	}
	if b.actual != 0 {
		return b.actual, nil
	}
	return b.speed, nil
}

func (b *fakeBus) Tx(w []byte) (int, error) {
	b.tx = append(b.tx, append([]byte(nil), w...))
	if b.failTx == len(b.tx) {
		if b.short {
			return 0, nil
		}
		return 0, errBus
	}
	return len(w), nil
}

// fakeOpener hands out buses and tracks how many are open at once.
type fakeOpener struct {
	next    func() *fakeBus
	opened  []*fakeBus
	maxOpen int
	fail    bool
}

func (o *fakeOpener) open(device string) (Bus, error) {
	if o.fail {
		return nil, errBus
	}
	b := &fakeBus{name: device}
	if o.next != nil {
		b = o.next()
		b.name = device
	}
	o.opened = append(o.opened, b)
	if n := o.openCount(); n > o.maxOpen {
		o.maxOpen = n
	}
	return b, nil
}

func (o *fakeOpener) openCount() (n int) {
	for _, b := range o.opened {
		if !b.closed {
			n++
		}
	}
	return
}

func newTestStrip(t *testing.T, bus *fakeBus) *Strip {
	t.Helper()
	o := &fakeOpener{next: func() *fakeBus { return bus }}
	s := New(testCount, WithOpener(o.open))
	require.NoError(t, s.Configure("test"))
	return s
}

func TestCorrectionTable(t *testing.T) {
	assert.Len(t, correction, 128)
	for i, v := range correction {
		assert.GreaterOrEqual(t, v, uint8(0x80), "entry %d", i)
		if i > 0 {
			assert.GreaterOrEqual(t, v, correction[i-1], "entry %d is not monotonic", i)
		}
	}
	assert.Equal(t, uint8(0x80), correction[0])
	assert.Equal(t, uint8(0xff), correction[127])
}

func TestCorrectionCopy(t *testing.T) {
	table := Correction()
	table[127] = 0
	assert.Equal(t, uint8(0xff), Correct(255), "table is not shared")
	assert.Equal(t, uint8(0xff), Correction()[127])
}

func TestCorrect(t *testing.T) {
	for v := 0; v < 256; v++ {
		if got, want := Correct(uint8(v)), correction[v>>1]; got != want {
			t.Errorf("Correct(%d): expected %#02x, got %#02x", v, want, got)
		}
	}
}

func TestConfigure(t *testing.T) {
	bus := &fakeBus{actual: 11_718_750}
	s := newTestStrip(t, bus)

	assert.Equal(t, conn.SPIMode0, bus.mode)
	assert.Equal(t, uint8(8), bus.bits)
	assert.Equal(t, uint32(DefaultClock), bus.speed)
	assert.Equal(t, uint32(11_718_750), s.Clock())
	assert.Equal(t, conn.SPIMode0, s.Mode())
	assert.Equal(t, uint8(8), s.BitsPerWord())
	assert.Equal(t, "117 LED strip on test", s.String())
}

func TestConfigureSteps(t *testing.T) {
	tests := []struct {
		name  string
		bus   *fakeBus
		fail  bool
		step  Step
		code  int
		cause error
	}{
		{"open", nil, true, StepOpen, -1, errBus},
		{"mode", &fakeBus{failMode: true}, false, StepMode, -2, errBus},
		{"bits", &fakeBus{failBits: true}, false, StepBitsPerWord, -3, errBus},
		{"clock write", &fakeBus{failSpeed: true}, false, StepClock, -4, errBus},
		{"clock read", &fakeBus{failReadSpeed: true}, false, StepClock, -4, errBus},
		{"clock zero", &fakeBus{zeroReadSpeed: true}, false, StepClock, -4, ErrNoClock},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			o := &fakeOpener{fail: test.fail}
			if test.bus != nil {
				o.next = func() *fakeBus { return test.bus }
			}
			s := New(testCount, WithOpener(o.open))

			err := s.Configure("/dev/spidev0.0")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
			assert.ErrorIs(t, err, test.cause)

			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, test.step, cerr.Step)
			assert.Equal(t, test.code, cerr.Code())
			assert.Equal(t, "/dev/spidev0.0", cerr.Device)

			if test.bus != nil {
				assert.True(t, test.bus.closed, "bus left open")
			}
			assert.Zero(t, s.Clock())
			assert.ErrorIs(t, s.Update(pixel.NewFrame(testCount)), ErrNoDevice)
		})
	}
}

func TestReconfigureClosesPrevious(t *testing.T) {
	o := &fakeOpener{}
	s := New(testCount, WithOpener(o.open))

	require.NoError(t, s.Configure("a"))
	require.NoError(t, s.Configure("b"))
	require.NoError(t, s.Configure("c"))

	require.Len(t, o.opened, 3)
	assert.True(t, o.opened[0].closed)
	assert.True(t, o.opened[1].closed)
	assert.False(t, o.opened[2].closed)
	assert.Equal(t, 1, o.maxOpen)

	// A failed re-configure leaves the strip unconfigured with nothing open.
	o.fail = true
	require.Error(t, s.Configure("d"))
	assert.True(t, o.opened[2].closed)
	assert.ErrorIs(t, s.Update(pixel.NewFrame(testCount)), ErrNoDevice)
}

func TestSetClockReadBack(t *testing.T) {
	bus := &fakeBus{}
	s := newTestStrip(t, bus)

	bus.actual = 7_812_500
	hz, err := s.SetClock(8_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint32(7_812_500), hz)
	assert.Equal(t, uint32(7_812_500), s.Clock())
	assert.Equal(t, uint32(8_000_000), bus.speed)
}

func TestSetClockFailure(t *testing.T) {
	bus := &fakeBus{}
	s := newTestStrip(t, bus)
	require.NotZero(t, s.Clock())

	bus.failSpeed = true
	hz, err := s.SetClock(1_000_000)
	assert.ErrorIs(t, err, errBus)
	assert.Zero(t, hz)
	assert.Zero(t, s.Clock())

	bus.failSpeed = false
	_, err = s.SetClock(1_000_000)
	require.NoError(t, err)

	bus.failReadSpeed = true
	hz, err = s.SetClock(2_000_000)
	assert.ErrorIs(t, err, errBus)
	assert.Zero(t, hz)
	assert.Zero(t, s.Clock())

	bus.failReadSpeed, bus.zeroReadSpeed = false, true
	hz, err = s.SetClock(2_000_000)
	assert.ErrorIs(t, err, ErrNoClock)
	assert.Zero(t, hz)
	assert.Zero(t, s.Clock())
}

func TestUnconfigured(t *testing.T) {
	s := New(testCount)

	hz, err := s.SetClock(DefaultClock)
	assert.ErrorIs(t, err, ErrNoDevice)
	assert.Zero(t, hz)
	assert.Zero(t, s.Clock())
	assert.ErrorIs(t, s.Update(pixel.NewFrame(testCount)), ErrNoDevice)
	assert.NoError(t, s.Close())
}

func TestUpdateZeroFrame(t *testing.T) {
	bus := &fakeBus{}
	s := newTestStrip(t, bus)

	require.NoError(t, s.Update(pixel.NewFrame(testCount)))
	require.Len(t, bus.tx, 2)

	// Zero input is corrected to the table's lowest level in the data phase,
	// the latch phase is all zero bytes.
	want := make([]byte, testCount*3)
	for i := range want {
		want[i] = correction[0]
	}
	assert.Equal(t, want, bus.tx[0])
	assert.Equal(t, make([]byte, testCount*3), bus.tx[1])
}

func TestUpdateWireOrder(t *testing.T) {
	bus := &fakeBus{}
	s := newTestStrip(t, bus)

	frame := pixel.NewFrame(testCount)
	frame.Fill(pixel.Pixel{R: 255, G: 128, B: 64})
	require.NoError(t, s.Update(frame))

	require.Len(t, bus.tx, 2)
	data := bus.tx[0]
	require.Len(t, data, testCount*3)
	for i := 0; i < testCount; i++ {
		assert.Equal(t, []byte{Correct(64), Correct(255), Correct(128)}, data[i*3:i*3+3], "pixel %d", i)
	}
	assert.Equal(t, []byte{0x86, 0xff, 0x98}, data[:3])
}

func TestUpdateFrameLength(t *testing.T) {
	bus := &fakeBus{}
	s := newTestStrip(t, bus)

	for _, n := range []int{0, testCount - 1, testCount + 1} {
		err := s.Update(pixel.NewFrame(n))
		assert.ErrorIs(t, err, ErrFrameLength, "length %d", n)
	}
	assert.Empty(t, bus.tx)
}

func TestUpdateTransferFailure(t *testing.T) {
	tests := []struct {
		name   string
		failTx int
		short  bool
		phase  Phase
		sent   int
	}{
		{"data", 1, false, PhaseData, 1},
		{"data short", 1, true, PhaseData, 1},
		{"latch", 2, false, PhaseLatch, 2},
		{"latch short", 2, true, PhaseLatch, 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			bus := &fakeBus{failTx: test.failTx, short: test.short}
			s := newTestStrip(t, bus)

			err := s.Update(pixel.NewFrame(testCount))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTransfer)

			var terr *TransferError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, test.phase, terr.Phase)
			assert.Len(t, bus.tx, test.sent)
		})
	}
}

func TestUpdateSim(t *testing.T) {
	s := New(3)
	require.NoError(t, s.Configure(SimDevice))
	assert.Equal(t, uint32(DefaultClock), s.Clock())

	require.NoError(t, s.Update(pixel.Frame{pixel.Red, pixel.Green, pixel.Blue}))
	require.NoError(t, s.Close())
}
