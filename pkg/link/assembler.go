package link

import (
	"github.com/robotalks/crsf.go/pkg/crsf"
)

// ParseResult is the outcome of feeding bytes to the Assembler.
type ParseResult struct {
	// Frames completed, in wire order.
	Frames []*crsf.Frame
	// FrameOffsets[i] is the number of Discarded bytes preceding Frames[i]
	// on the wire.
	FrameOffsets []int
	// Discarded are bytes dropped one at a time while resynchronizing.
	Discarded []byte
	// Overflow counts bytes dropped when the buffer filled up.
	Overflow int
	// CRCErrors and LengthErrors count the reasons of 1-byte discards.
	CRCErrors    int
	LengthErrors int
}

// Empty indicates nothing happened.
func (r *ParseResult) Empty() bool {
	return len(r.Frames) == 0 && len(r.Discarded) == 0 && r.Overflow == 0
}

// Assembler reassembles frames from a byte stream.
type Assembler struct {
	buf [crsf.BufferSize]byte
	pos int
}

// Pending returns the number of buffered bytes.
func (a *Assembler) Pending() int {
	return a.pos
}

// Parse consumes one byte.
func (a *Assembler) Parse(b byte) (pr ParseResult) {
	a.parse(b, &pr)
	return
}

// ParseBytes consumes bytes in order.
func (a *Assembler) ParseBytes(data []byte) (pr ParseResult) {
	for _, b := range data {
		a.parse(b, &pr)
	}
	return
}

// Flush discards all buffered bytes one at a time.
func (a *Assembler) Flush() (pr ParseResult) {
	for a.pos > 0 {
		a.shift(&pr)
	}
	return
}

func (a *Assembler) parse(b byte, pr *ParseResult) {
	a.buf[a.pos] = b
	a.pos++
	for a.pos >= 2 {
		size := int(a.buf[1])
		if size < crsf.MinFrameSize || size > crsf.MaxFrameSize {
			pr.LengthErrors++
			a.shift(pr)
			continue
		}
		total := size + 2
		if a.pos < total {
			break
		}
		if crsf.Checksum(a.buf[2:size+1]) != a.buf[size+1] {
			pr.CRCErrors++
			a.shift(pr)
			continue
		}
		pr.FrameOffsets = append(pr.FrameOffsets, len(pr.Discarded))
		pr.Frames = append(pr.Frames, &crsf.Frame{
			Address: crsf.Address(a.buf[0]),
			Type:    crsf.FrameType(a.buf[2]),
			Payload: append([]byte(nil), a.buf[3:size+1]...),
		})
		a.drop(total)
	}
	if a.pos >= len(a.buf) {
		pr.Overflow += a.pos
		a.pos = 0
	}
}

// shift drops the head byte and reports it.
func (a *Assembler) shift(pr *ParseResult) {
	pr.Discarded = append(pr.Discarded, a.buf[0])
	a.drop(1)
}

func (a *Assembler) drop(n int) {
	if n >= a.pos {
		a.pos = 0
		return
	}
	copy(a.buf[:], a.buf[n:a.pos])
	a.pos -= n
}
