//go:build linux

package realtime

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func elevate() error {
	prio, _, errno := unix.Syscall(unix.SYS_SCHED_GET_PRIORITY_MAX, unix.SCHED_FIFO, 0, 0)
	if errno != 0 {
		return fmt.Errorf("realtime: query maximum priority: %w", errno)
	}

	attr := &unix.SchedAttr{
		Policy:   unix.SCHED_FIFO,
		Priority: uint32(prio),
	}
	if err := unix.SchedSetAttr(0, attr, 0); err != nil {
		return fmt.Errorf("realtime: set SCHED_FIFO priority %d: %w", prio, err)
	}
	return nil
}
