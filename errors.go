package ledstrip

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrNoDevice    = errors.New("ledstrip: no device configured")
	ErrFrameLength = errors.New("ledstrip: frame length does not match strip length")
	ErrConfig      = errors.New("ledstrip: bus configuration failed")
	ErrTransfer    = errors.New("ledstrip: transfer failed")
	ErrNoClock     = errors.New("ledstrip: bus reported a zero clock")
)

// Step identifies the bus configuration step that failed.
type Step uint8

// Configuration steps, in the order they are run.
const (
	StepOpen Step = iota + 1
	StepMode
	StepBitsPerWord
	StepClock
)

func (s Step) String() string {
	switch s {
	case StepOpen:
		return "open"
	case StepMode:
		return "set mode"
	case StepBitsPerWord:
		return "set bits per word"
	case StepClock:
		return "set clock"
	default:
		return fmt.Sprintf("step(%d)", uint8(s))
	}
}

// ConfigError reports which step of Configure failed.
type ConfigError struct {
	Step   Step
	Device string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("ledstrip: %s %s failed: %v", e.Step, e.Device, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrConfig, e.Err}
}

// Code is a distinct negative number per failing step: -1 for open, -2 for
// mode, -3 for bits per word and -4 for the clock.
func (e *ConfigError) Code() int {
	return -int(e.Step)
}

// Phase of a strip update.
type Phase uint8

// Update phases.
const (
	PhaseData Phase = iota
	PhaseLatch
)

func (p Phase) String() string {
	if p == PhaseLatch {
		return "latch"
	}
	return "data"
}

// TransferError reports which phase of Update failed. A failed latch phase
// means the data phase already reached the strip.
type TransferError struct {
	Phase Phase
	Err   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("ledstrip: %s transfer failed: %v", e.Phase, e.Err)
}

func (e *TransferError) Unwrap() []error {
	return []error{ErrTransfer, e.Err}
}
