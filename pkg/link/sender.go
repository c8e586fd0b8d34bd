package link

import (
	"io"
	"time"

	"github.com/robotalks/crsf.go/pkg/crsf"
)

// Sender writes frames subject to link conditions.
type Sender struct {
	Writer  io.Writer
	Role    Role
	Gate    *Gate
	Monitor *Monitor
	// Guard holds sends while a byte was received less than Guard ago.
	Guard time.Duration

	lastRecv time.Time
}

// Received records the time a byte was received.
func (s *Sender) Received(now time.Time) {
	s.lastRecv = now
}

// Send encodes and writes a frame in a single Write.
func (s *Sender) Send(now time.Time, addr crsf.Address, typ crsf.FrameType, payload []byte) error {
	if len(payload) > crsf.MaxPayloadLen {
		return crsf.ErrPayloadTooLarge
	}
	if s.Gate != nil && s.Gate.Active() {
		return ErrPassthrough
	}
	if s.Role == RoleReceiver && (s.Monitor == nil || s.Monitor.State() != LinkUp) {
		return ErrNotReady
	}
	if s.Guard > 0 && !s.lastRecv.IsZero() && now.Sub(s.lastRecv) < s.Guard {
		return ErrWouldBlock
	}
	return s.write(addr, typ, payload)
}

// SendUnchecked writes a frame regardless of link state. Size and
// passthrough are still checked.
func (s *Sender) SendUnchecked(addr crsf.Address, typ crsf.FrameType, payload []byte) error {
	if len(payload) > crsf.MaxPayloadLen {
		return crsf.ErrPayloadTooLarge
	}
	if s.Gate != nil && s.Gate.Active() {
		return ErrPassthrough
	}
	return s.write(addr, typ, payload)
}

func (s *Sender) write(addr crsf.Address, typ crsf.FrameType, payload []byte) error {
	f := crsf.Frame{Address: addr, Type: typ, Payload: payload}
	_, err := f.WriteTo(s.Writer)
	return err
}
