package transport

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/term"
)

// Serial is a raw serial port.
type Serial struct {
	Device string

	t    *term.Term
	baud int
	buf  [1]byte
}

// OpenSerial opens a serial device in raw mode.
func OpenSerial(dev string, baud int) (*Serial, error) {
	s := &Serial{Device: dev}
	if err := s.open(baud); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Serial) open(baud int) error {
	t, err := term.Open(s.Device, term.Speed(baud), term.RawMode)
	if err != nil {
		return fmt.Errorf("open %s at %d: %v", s.Device, baud, err)
	}
	s.t, s.baud = t, baud
	glog.Infof("%s opened at %d", s.Device, baud)
	return nil
}

// Baud returns the current baud rate.
func (s *Serial) Baud() int {
	return s.baud
}

// Available implements Transport.
func (s *Serial) Available() (int, error) {
	return s.t.Available()
}

// ReadByte implements Transport.
func (s *Serial) ReadByte() (byte, error) {
	if _, err := s.t.Read(s.buf[:]); err != nil {
		return 0, err
	}
	return s.buf[0], nil
}

// Write implements Transport.
func (s *Serial) Write(p []byte) (int, error) {
	return s.t.Write(p)
}

// Reopen implements Transport. Pending output is drained first.
func (s *Serial) Reopen(baud int) error {
	if err := s.t.Close(); err != nil {
		glog.Warningf("close %s: %v", s.Device, err)
	}
	return s.open(baud)
}

// Close implements Transport.
func (s *Serial) Close() error {
	return s.t.Close()
}
