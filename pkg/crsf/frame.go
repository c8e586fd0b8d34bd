package crsf

import "io"

// Frame size limits.
const (
	// BufferSize is the largest frame on the wire including address and
	// frame_size bytes.
	BufferSize = 64
	// MinFrameSize is the smallest valid frame_size (type, crc and one
	// payload byte).
	MinFrameSize = 3
	// MaxFrameSize is the largest valid frame_size.
	MaxFrameSize = BufferSize - 2
	// MaxPayloadLen is the largest payload a frame can carry.
	MaxPayloadLen = BufferSize - 4
)

// Frame is a validated frame.
type Frame struct {
	Address Address
	Type    FrameType
	Payload []byte
}

// NewFrame encodes payload p into a frame addressed to addr.
func NewFrame(addr Address, p Payload) (*Frame, error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if len(data) > MaxPayloadLen {
		return nil, ErrPayloadTooLarge
	}
	return &Frame{Address: addr, Type: p.FrameType(), Payload: data}, nil
}

// Size returns the frame_size field.
func (f *Frame) Size() int {
	return len(f.Payload) + 2
}

// CRC computes the checksum of the frame.
func (f *Frame) CRC() byte {
	return UpdateChecksum(crc8Table[byte(f.Type)], f.Payload)
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() []byte {
	b := make([]byte, len(f.Payload)+4)
	b[0], b[1], b[2] = byte(f.Address), byte(f.Size()), byte(f.Type)
	copy(b[3:], f.Payload)
	b[len(b)-1] = f.CRC()
	return b
}

// WriteTo writes the encoded frame in a single Write.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Bytes())
	return int64(n), err
}

// Decode decodes the payload by frame type.
func (f *Frame) Decode() (Payload, error) {
	return DecodePayload(f.Type, f.Payload)
}

// ParseFrame validates one complete encoded frame. Trailing bytes are
// ignored and the payload is copied.
func ParseFrame(b []byte) (*Frame, error) {
	if len(b) < 2 {
		return nil, ErrShortPayload
	}
	size := int(b[1])
	if size < MinFrameSize || size > MaxFrameSize {
		return nil, &ErrBadLength{Size: size}
	}
	if len(b) < size+2 {
		return nil, ErrShortPayload
	}
	if Checksum(b[2:size+1]) != b[size+1] {
		return nil, ErrBadCRC
	}
	f := &Frame{Address: Address(b[0]), Type: FrameType(b[2])}
	f.Payload = append([]byte(nil), b[3:size+1]...)
	return f, nil
}
