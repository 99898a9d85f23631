// Package realtime moves the calling thread into a fixed-priority real-time
// scheduling class.
package realtime

import "errors"

// ErrUnsupported is returned on platforms without real-time scheduling.
var ErrUnsupported = errors.New("realtime: not supported on this platform")

// Elevate requests the highest FIFO real-time priority for the calling OS
// thread. Callers should lock the goroutine to its thread first, see
// runtime.LockOSThread.
func Elevate() error {
	return elevate()
}
