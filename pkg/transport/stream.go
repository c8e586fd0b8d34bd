package transport

import (
	"bytes"
	"io"
	"sync"

	"github.com/golang/glog"
)

// Stream adapts a blocking io.ReadWriteCloser. A background goroutine
// reads into a buffer so Available never blocks.
type Stream struct {
	rwc io.ReadWriteCloser

	lock sync.Mutex
	buf  bytes.Buffer
	err  error
}

// NewStream wraps rwc and starts reading.
func NewStream(rwc io.ReadWriteCloser) *Stream {
	s := &Stream{rwc: rwc}
	go s.readLoop()
	return s
}

func (s *Stream) readLoop() {
	buf := make([]byte, 256)
	for {
		n, err := s.rwc.Read(buf)
		s.lock.Lock()
		s.buf.Write(buf[:n])
		if err != nil {
			s.err = err
		}
		s.lock.Unlock()
		if err != nil {
			glog.V(2).Infof("stream read: %v", err)
			return
		}
	}
}

// Available implements Transport. Buffered bytes are returned before the
// read error.
func (s *Stream) Available() (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if n := s.buf.Len(); n > 0 || s.err == nil {
		return n, nil
	}
	return 0, s.err
}

// ReadByte implements Transport.
func (s *Stream) ReadByte() (byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.buf.ReadByte()
}

// Write implements Transport.
func (s *Stream) Write(p []byte) (int, error) {
	return s.rwc.Write(p)
}

// Reopen implements Transport. Streams have no baud rate.
func (s *Stream) Reopen(baud int) error {
	glog.V(2).Infof("stream ignores baud %d", baud)
	return nil
}

// Close implements Transport.
func (s *Stream) Close() error {
	return s.rwc.Close()
}
