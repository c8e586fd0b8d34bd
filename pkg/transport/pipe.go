package transport

import (
	"bytes"
	"io"
	"sync"
)

// PipeEnd is one end of an in-memory Pipe.
type PipeEnd struct {
	in   *pipeBuffer
	out  *pipeBuffer
	Baud int
}

type pipeBuffer struct {
	lock   sync.Mutex
	buf    bytes.Buffer
	closed bool
}

// Pipe creates two connected ends. Bytes written to one end are
// available on the other.
func Pipe() (*PipeEnd, *PipeEnd) {
	a, b := &pipeBuffer{}, &pipeBuffer{}
	return &PipeEnd{in: a, out: b}, &PipeEnd{in: b, out: a}
}

// Available implements Transport.
func (p *PipeEnd) Available() (int, error) {
	p.in.lock.Lock()
	defer p.in.lock.Unlock()
	if p.in.buf.Len() == 0 && p.in.closed {
		return 0, io.EOF
	}
	return p.in.buf.Len(), nil
}

// ReadByte implements Transport.
func (p *PipeEnd) ReadByte() (byte, error) {
	p.in.lock.Lock()
	defer p.in.lock.Unlock()
	return p.in.buf.ReadByte()
}

// Write implements Transport.
func (p *PipeEnd) Write(data []byte) (int, error) {
	p.out.lock.Lock()
	defer p.out.lock.Unlock()
	if p.out.closed {
		return 0, io.ErrClosedPipe
	}
	return p.out.buf.Write(data)
}

// Reopen implements Transport.
func (p *PipeEnd) Reopen(baud int) error {
	p.Baud = baud
	return nil
}

// Close implements Transport.
func (p *PipeEnd) Close() error {
	for _, b := range []*pipeBuffer{p.in, p.out} {
		b.lock.Lock()
		b.closed = true
		b.lock.Unlock()
	}
	return nil
}
