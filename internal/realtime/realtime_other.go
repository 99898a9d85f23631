//go:build !linux

package realtime

func elevate() error {
	return ErrUnsupported
}
