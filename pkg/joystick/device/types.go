// Package device reads joystick events from the Linux joystick API.
package device

import "io"

// Event types, Type is a bit set.
const (
	TypeButton uint8 = 0x01
	TypeAxis   uint8 = 0x02
	TypeInit   uint8 = 0x80
)

// AxisMax is the absolute maximum of an axis value.
const AxisMax = 32767

// Event is a js_event read from the device.
type Event struct {
	Time   uint32 // ms
	Value  int16
	Type   uint8
	Number uint8
}

// IsInit indicates the event reports the initial state.
func (e Event) IsInit() bool { return e.Type&TypeInit != 0 }

// IsAxis indicates an axis event.
func (e Event) IsAxis() bool { return e.Type&TypeAxis != 0 }

// IsButton indicates a button event.
func (e Event) IsButton() bool { return e.Type&TypeButton != 0 }

// Pressed is the button state.
func (e Event) Pressed() bool { return e.Value != 0 }

// Device is an opened joystick.
type Device interface {
	io.Closer
	Index() int
	Name() string
	AxisCount() int
	ButtonCount() int
	// ReadEvent blocks until the next event.
	ReadEvent() (Event, error)
}
