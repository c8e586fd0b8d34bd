package crsf

import (
	"errors"
	"fmt"
)

var (
	// ErrShortPayload indicates the payload is shorter than its layout.
	ErrShortPayload = errors.New("payload too short")
	// ErrPayloadTooLarge indicates the payload doesn't fit in a frame.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrBadCRC indicates the frame checksum mismatches.
	ErrBadCRC = errors.New("crc mismatch")
	// ErrTooManyValues indicates a variable length payload has more values
	// than the frame type allows.
	ErrTooManyValues = errors.New("too many values")
)

// ErrUnknownType indicates the frame type has no payload codec.
type ErrUnknownType struct {
	Type FrameType
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown frame type: 0x%02x", byte(e.Type))
}

// ErrBadLength indicates an implausible frame_size.
type ErrBadLength struct {
	Size int
}

// Error implements error.
func (e *ErrBadLength) Error() string {
	return fmt.Sprintf("bad frame size %d", e.Size)
}
