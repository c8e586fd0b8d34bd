//go:build linux

package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	iocGAXES    = 0x80016a11
	iocGBUTTONS = 0x80016a12
	iocGNAME    = 0x80ff6a13 // 255 bytes

	eventSize = 8
)

type device struct {
	file        *os.File
	index       int
	name        string
	axisCount   int
	buttonCount int
}

// Open opens /dev/input/js<index>.
func Open(index int) (Device, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/input/js%d", index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	d := &device{file: f, index: index}
	if err := d.query(); err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

func (d *device) query() error {
	fd := int(d.file.Fd())
	axes, err := unix.IoctlGetInt(fd, iocGAXES)
	if err != nil {
		return err
	}
	buttons, err := unix.IoctlGetInt(fd, iocGBUTTONS)
	if err != nil {
		return err
	}
	d.axisCount, d.buttonCount = axes&0xff, buttons&0xff

	var buf [255]byte
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), iocGNAME, uintptr(unsafe.Pointer(&buf[0]))); errno != 0 {
		return errno
	}
	if pos := bytes.IndexByte(buf[:], 0); pos >= 0 {
		d.name = string(buf[:pos])
	} else {
		d.name = string(buf[:])
	}
	return nil
}

// DetectAndOpen opens the first available device from startIndex. It
// returns nil without error when none is found.
func DetectAndOpen(startIndex int) (Device, error) {
	for index := startIndex; index < 32; index++ {
		d, err := Open(index)
		if err == nil {
			return d, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return nil, nil
}

func (d *device) Close() error     { return d.file.Close() }
func (d *device) Index() int       { return d.index }
func (d *device) Name() string     { return d.name }
func (d *device) AxisCount() int   { return d.axisCount }
func (d *device) ButtonCount() int { return d.buttonCount }

func (d *device) ReadEvent() (ev Event, err error) {
	var buf [eventSize]byte
	if _, err = io.ReadFull(d.file, buf[:]); err != nil {
		return
	}
	err = binary.Read(bytes.NewReader(buf[:]), binary.LittleEndian, &ev)
	return
}
