package msgs

import (
	"github.com/robotalks/crsf.go/pkg/crsf"
	"github.com/robotalks/crsf.go/pkg/telemetry"
)

// FromChannels converts a channel set.
func FromChannels(cs crsf.ChannelSet) *Channels {
	m := &Channels{Values: make([]int32, len(cs))}
	for n, v := range cs {
		m.Values[n] = int32(v)
	}
	return m
}

// FromLinkStatistics converts link statistics.
func FromLinkStatistics(ls *crsf.LinkStatistics) *LinkStats {
	return &LinkStats{
		UplinkRSSI1:   uint32(ls.UplinkRSSI1),
		UplinkRSSI2:   uint32(ls.UplinkRSSI2),
		UplinkLQ:      uint32(ls.UplinkLQ),
		UplinkSNR:     int32(ls.UplinkSNR),
		ActiveAntenna: uint32(ls.ActiveAntenna),
		RFMode:        uint32(ls.RFMode),
		UplinkTXPower: uint32(ls.UplinkTXPower),
		DownlinkRSSI:  uint32(ls.DownlinkRSSI),
		DownlinkLQ:    uint32(ls.DownlinkLQ),
		DownlinkSNR:   int32(ls.DownlinkSNR),
		RSSI:          int32(ls.RSSI()),
	}
}

// FromPayload converts a decoded telemetry payload. Payloads without a
// dedicated message become Sensor.
func FromPayload(p crsf.Payload) (SerializableMessage, error) {
	switch v := p.(type) {
	case *crsf.LinkStatistics:
		return FromLinkStatistics(v), nil
	case *crsf.ChannelSet:
		return FromChannels(*v), nil
	case *crsf.Battery:
		return &Battery{
			Voltage:   uint32(v.Voltage),
			Current:   uint32(v.Current),
			Capacity:  v.Capacity,
			Remaining: uint32(v.Remaining),
		}, nil
	case *crsf.GPS:
		return &GPS{
			Latitude:    v.Latitude,
			Longitude:   v.Longitude,
			GroundSpeed: uint32(v.GroundSpeed),
			Heading:     uint32(v.Heading),
			Altitude:    int32(v.AltitudeMeters()),
			Satellites:  uint32(v.Satellites),
		}, nil
	case *crsf.Attitude:
		m := &Attitude{}
		m.Pitch, m.Roll, m.Yaw = v.Degrees()
		return m, nil
	case *crsf.FlightMode:
		return &FlightMode{Mode: v.Mode}, nil
	}
	data, err := p.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &Sensor{Type: uint32(p.FrameType()), Payload: data}, nil
}

// FromPosition converts a position relative to home.
func FromPosition(pos telemetry.Position) *Home {
	return &Home{
		Distance:  pos.Distance,
		Bearing:   pos.Bearing,
		Latitude:  pos.Home.Lat.Degrees(),
		Longitude: pos.Home.Lng.Degrees(),
	}
}

// Frame returns the destination and payload to send.
func (m *Send) Frame() (crsf.Address, crsf.Payload) {
	return crsf.Address(m.Address), &crsf.Raw{Type: crsf.FrameType(m.Type), Data: m.Payload}
}
