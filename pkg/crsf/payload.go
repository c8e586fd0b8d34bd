package crsf

import "encoding"

// Payload is a typed frame payload.
type Payload interface {
	FrameType() FrameType
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// PayloadTypes maps frame types to payload constructors.
var PayloadTypes = map[FrameType]func() Payload{
	TypeGPS:            func() Payload { return &GPS{} },
	TypeVario:          func() Payload { return &Vario{} },
	TypeBattery:        func() Payload { return &Battery{} },
	TypeBaroAltitude:   func() Payload { return &BaroAltitude{} },
	TypeAirspeed:       func() Payload { return &Airspeed{} },
	TypeRPM:            func() Payload { return &RPM{} },
	TypeTemperature:    func() Payload { return &Temperature{} },
	TypeCells:          func() Payload { return &Cells{} },
	TypeLinkStatistics: func() Payload { return &LinkStatistics{} },
	TypeChannelsPacked: func() Payload { return &ChannelSet{} },
	TypeAttitude:       func() Payload { return &Attitude{} },
	TypeFlightMode:     func() Payload { return &FlightMode{} },
	TypeCommand:        func() Payload { return &Command{} },
}

// DecodePayload decodes data according to the frame type.
func DecodePayload(t FrameType, data []byte) (Payload, error) {
	newFn, ok := PayloadTypes[t]
	if !ok {
		return nil, &ErrUnknownType{Type: t}
	}
	p := newFn()
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return p, nil
}

// Raw is an undecoded payload of any frame type.
type Raw struct {
	Type FrameType
	Data []byte
}

// FrameType implements Payload.
func (p *Raw) FrameType() FrameType { return p.Type }

// MarshalBinary implements Payload.
func (p *Raw) MarshalBinary() ([]byte, error) {
	if len(p.Data) > MaxPayloadLen {
		return nil, ErrPayloadTooLarge
	}
	return p.Data, nil
}

// UnmarshalBinary implements Payload.
func (p *Raw) UnmarshalBinary(b []byte) error {
	p.Data = append(p.Data[:0], b...)
	return nil
}
