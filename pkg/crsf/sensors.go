package crsf

import (
	"bytes"
	"encoding/binary"
	"math"
)

var be = binary.BigEndian

// GPS is the GPS payload.
type GPS struct {
	Latitude    int32  // degree / 10,000,000
	Longitude   int32  // degree / 10,000,000
	GroundSpeed uint16 // km/h / 10
	Heading     uint16 // degree / 100
	Altitude    uint16 // meter + 1000
	Satellites  uint8
}

// GPSPayloadLen is the size of the GPS payload.
const GPSPayloadLen = 15

// FrameType implements Payload.
func (p *GPS) FrameType() FrameType { return TypeGPS }

// MarshalBinary implements Payload.
func (p *GPS) MarshalBinary() ([]byte, error) {
	b := make([]byte, GPSPayloadLen)
	be.PutUint32(b[0:], uint32(p.Latitude))
	be.PutUint32(b[4:], uint32(p.Longitude))
	be.PutUint16(b[8:], p.GroundSpeed)
	be.PutUint16(b[10:], p.Heading)
	be.PutUint16(b[12:], p.Altitude)
	b[14] = p.Satellites
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *GPS) UnmarshalBinary(b []byte) error {
	if len(b) < GPSPayloadLen {
		return ErrShortPayload
	}
	p.Latitude = int32(be.Uint32(b[0:]))
	p.Longitude = int32(be.Uint32(b[4:]))
	p.GroundSpeed = be.Uint16(b[8:])
	p.Heading = be.Uint16(b[10:])
	p.Altitude = be.Uint16(b[12:])
	p.Satellites = b[14]
	return nil
}

// LatLng returns the position in degrees.
func (p *GPS) LatLng() (lat, lng float64) {
	return float64(p.Latitude) / 1e7, float64(p.Longitude) / 1e7
}

// AltitudeMeters removes the altitude offset.
func (p *GPS) AltitudeMeters() int {
	return int(p.Altitude) - 1000
}

// Vario is the vertical speed payload.
type Vario struct {
	VerticalSpeed int16 // cm/s
}

// FrameType implements Payload.
func (p *Vario) FrameType() FrameType { return TypeVario }

// MarshalBinary implements Payload.
func (p *Vario) MarshalBinary() ([]byte, error) {
	b := make([]byte, 2)
	be.PutUint16(b, uint16(p.VerticalSpeed))
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *Vario) UnmarshalBinary(b []byte) error {
	if len(b) < 2 {
		return ErrShortPayload
	}
	p.VerticalSpeed = int16(be.Uint16(b))
	return nil
}

// Battery is the battery sensor payload.
type Battery struct {
	Voltage   uint16 // V * 10
	Current   uint16 // A * 10
	Capacity  uint32 // mAh, 24 bits
	Remaining uint8  // percent
}

// BatteryPayloadLen is the size of the battery payload.
const BatteryPayloadLen = 8

// FrameType implements Payload.
func (p *Battery) FrameType() FrameType { return TypeBattery }

// MarshalBinary implements Payload.
func (p *Battery) MarshalBinary() ([]byte, error) {
	b := make([]byte, BatteryPayloadLen)
	be.PutUint16(b[0:], p.Voltage)
	be.PutUint16(b[2:], p.Current)
	putUint24(b[4:], p.Capacity)
	b[7] = p.Remaining
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *Battery) UnmarshalBinary(b []byte) error {
	if len(b) < BatteryPayloadLen {
		return ErrShortPayload
	}
	p.Voltage = be.Uint16(b[0:])
	p.Current = be.Uint16(b[2:])
	p.Capacity = uint24(b[4:])
	p.Remaining = b[7]
	return nil
}

// BaroAltitude is the barometric altitude payload.
type BaroAltitude struct {
	// Altitude is decimeters + 10000, or meters when bit 15 is set.
	Altitude      uint16
	VerticalSpeed int16 // cm/s
}

const baroMetersFlag = 0x8000

// SetDecimeters encodes the altitude, switching to meter resolution
// when it doesn't fit in the decimeter range.
func (p *BaroAltitude) SetDecimeters(dm int) {
	switch v := dm + 10000; {
	case v >= 0 && v < baroMetersFlag:
		p.Altitude = uint16(v)
	case v < 0:
		p.Altitude = 0
	default:
		m := dm / 10
		if m >= baroMetersFlag {
			m = baroMetersFlag - 1
		}
		p.Altitude = uint16(m) | baroMetersFlag
	}
}

// Decimeters decodes the altitude.
func (p *BaroAltitude) Decimeters() int {
	if p.Altitude&baroMetersFlag != 0 {
		return int(p.Altitude&^baroMetersFlag) * 10
	}
	return int(p.Altitude) - 10000
}

// FrameType implements Payload.
func (p *BaroAltitude) FrameType() FrameType { return TypeBaroAltitude }

// MarshalBinary implements Payload.
func (p *BaroAltitude) MarshalBinary() ([]byte, error) {
	b := make([]byte, 4)
	be.PutUint16(b[0:], p.Altitude)
	be.PutUint16(b[2:], uint16(p.VerticalSpeed))
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *BaroAltitude) UnmarshalBinary(b []byte) error {
	if len(b) < 4 {
		return ErrShortPayload
	}
	p.Altitude = be.Uint16(b[0:])
	p.VerticalSpeed = int16(be.Uint16(b[2:]))
	return nil
}

// Airspeed is the airspeed payload.
type Airspeed struct {
	Speed uint16 // km/h * 10
}

// FrameType implements Payload.
func (p *Airspeed) FrameType() FrameType { return TypeAirspeed }

// MarshalBinary implements Payload.
func (p *Airspeed) MarshalBinary() ([]byte, error) {
	b := make([]byte, 2)
	be.PutUint16(b, p.Speed)
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *Airspeed) UnmarshalBinary(b []byte) error {
	if len(b) < 2 {
		return ErrShortPayload
	}
	p.Speed = be.Uint16(b)
	return nil
}

// Maximum number of values in variable length payloads.
const (
	MaxRPMValues         = 19
	MaxTemperatureValues = 20
	MaxCellValues        = 29
)

// RPM carries 1 to 19 signed 24-bit RPM values. Negative values mean
// reverse rotation.
type RPM struct {
	Source uint8
	Values []int32
}

// FrameType implements Payload.
func (p *RPM) FrameType() FrameType { return TypeRPM }

// MarshalBinary implements Payload.
func (p *RPM) MarshalBinary() ([]byte, error) {
	if err := checkValueCount(len(p.Values), MaxRPMValues); err != nil {
		return nil, err
	}
	b := make([]byte, 1+len(p.Values)*3)
	b[0] = p.Source
	for n, v := range p.Values {
		putUint24(b[1+n*3:], uint32(v))
	}
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *RPM) UnmarshalBinary(b []byte) error {
	count, err := valueCount(b, 3, MaxRPMValues)
	if err != nil {
		return err
	}
	p.Source, p.Values = b[0], make([]int32, count)
	for n := range p.Values {
		v := uint24(b[1+n*3:])
		p.Values[n] = int32(v<<8) >> 8
	}
	return nil
}

// Temperature carries 1 to 20 values in deci-degree Celsius.
type Temperature struct {
	Source uint8
	Values []int16
}

// FrameType implements Payload.
func (p *Temperature) FrameType() FrameType { return TypeTemperature }

// MarshalBinary implements Payload.
func (p *Temperature) MarshalBinary() ([]byte, error) {
	if err := checkValueCount(len(p.Values), MaxTemperatureValues); err != nil {
		return nil, err
	}
	b := make([]byte, 1+len(p.Values)*2)
	b[0] = p.Source
	for n, v := range p.Values {
		be.PutUint16(b[1+n*2:], uint16(v))
	}
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *Temperature) UnmarshalBinary(b []byte) error {
	count, err := valueCount(b, 2, MaxTemperatureValues)
	if err != nil {
		return err
	}
	p.Source, p.Values = b[0], make([]int16, count)
	for n := range p.Values {
		p.Values[n] = int16(be.Uint16(b[1+n*2:]))
	}
	return nil
}

// Cells carries 1 to 29 cell voltages in mV.
type Cells struct {
	Source uint8
	Values []uint16
}

// FrameType implements Payload.
func (p *Cells) FrameType() FrameType { return TypeCells }

// MarshalBinary implements Payload.
func (p *Cells) MarshalBinary() ([]byte, error) {
	if err := checkValueCount(len(p.Values), MaxCellValues); err != nil {
		return nil, err
	}
	b := make([]byte, 1+len(p.Values)*2)
	b[0] = p.Source
	for n, v := range p.Values {
		be.PutUint16(b[1+n*2:], v)
	}
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *Cells) UnmarshalBinary(b []byte) error {
	count, err := valueCount(b, 2, MaxCellValues)
	if err != nil {
		return err
	}
	p.Source, p.Values = b[0], make([]uint16, count)
	for n := range p.Values {
		p.Values[n] = be.Uint16(b[1+n*2:])
	}
	return nil
}

// Attitude is the attitude payload, in radians * 10000.
type Attitude struct {
	Pitch int16
	Roll  int16
	Yaw   int16
}

// FrameType implements Payload.
func (p *Attitude) FrameType() FrameType { return TypeAttitude }

// MarshalBinary implements Payload.
func (p *Attitude) MarshalBinary() ([]byte, error) {
	b := make([]byte, 6)
	be.PutUint16(b[0:], uint16(p.Pitch))
	be.PutUint16(b[2:], uint16(p.Roll))
	be.PutUint16(b[4:], uint16(p.Yaw))
	return b, nil
}

// UnmarshalBinary implements Payload.
func (p *Attitude) UnmarshalBinary(b []byte) error {
	if len(b) < 6 {
		return ErrShortPayload
	}
	p.Pitch = int16(be.Uint16(b[0:]))
	p.Roll = int16(be.Uint16(b[2:]))
	p.Yaw = int16(be.Uint16(b[4:]))
	return nil
}

// Degrees converts the attitude into degrees.
func (p *Attitude) Degrees() (pitch, roll, yaw float64) {
	conv := func(v int16) float64 { return float64(v) / 10000 * 180 / math.Pi }
	return conv(p.Pitch), conv(p.Roll), conv(p.Yaw)
}

// FlightModeLen is the maximum size of the flight mode payload including
// the terminating NUL.
const FlightModeLen = 16

// FlightMode is the flight mode text.
type FlightMode struct {
	Mode string
}

// FrameType implements Payload.
func (p *FlightMode) FrameType() FrameType { return TypeFlightMode }

// MarshalBinary implements Payload. Long names are truncated.
func (p *FlightMode) MarshalBinary() ([]byte, error) {
	mode := p.Mode
	if len(mode) >= FlightModeLen {
		mode = mode[:FlightModeLen-1]
	}
	return append([]byte(mode), 0), nil
}

// UnmarshalBinary implements Payload.
func (p *FlightMode) UnmarshalBinary(b []byte) error {
	if len(b) == 0 {
		return ErrShortPayload
	}
	if len(b) > FlightModeLen {
		b = b[:FlightModeLen]
	}
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	p.Mode = string(b)
	return nil
}

// Command is an opaque command payload.
type Command struct {
	Data []byte
}

// RebootToBootloader asks a receiver to reboot into its bootloader.
func RebootToBootloader() *Command {
	return &Command{Data: []byte{'b', 'l'}}
}

// FrameType implements Payload.
func (p *Command) FrameType() FrameType { return TypeCommand }

// MarshalBinary implements Payload.
func (p *Command) MarshalBinary() ([]byte, error) {
	if len(p.Data) == 0 {
		return nil, ErrShortPayload
	}
	return append([]byte(nil), p.Data...), nil
}

// UnmarshalBinary implements Payload.
func (p *Command) UnmarshalBinary(b []byte) error {
	if len(b) == 0 {
		return ErrShortPayload
	}
	p.Data = append([]byte(nil), b...)
	return nil
}

func putUint24(b []byte, v uint32) {
	b[0], b[1], b[2] = byte(v>>16), byte(v>>8), byte(v)
}

func uint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func checkValueCount(n, max int) error {
	if n == 0 {
		return ErrShortPayload
	}
	if n > max {
		return ErrTooManyValues
	}
	return nil
}

func valueCount(b []byte, size, max int) (int, error) {
	if len(b) < 1+size {
		return 0, ErrShortPayload
	}
	count := (len(b) - 1) / size
	if count > max {
		count = max
	}
	return count, nil
}
