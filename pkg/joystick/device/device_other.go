//go:build !linux

package device

import "errors"

// ErrUnsupported indicates joysticks are only supported on Linux.
var ErrUnsupported = errors.New("joystick not supported")

// Open is not supported.
func Open(index int) (Device, error) {
	return nil, ErrUnsupported
}

// DetectAndOpen is not supported.
func DetectAndOpen(startIndex int) (Device, error) {
	return nil, ErrUnsupported
}
