package crsf

// LinkStatistics is the link statistics payload.
type LinkStatistics struct {
	UplinkRSSI1   uint8 // -dBm
	UplinkRSSI2   uint8 // -dBm
	UplinkLQ      uint8 // percent
	UplinkSNR     int8  // dB
	ActiveAntenna uint8
	RFMode        uint8
	UplinkTXPower uint8
	DownlinkRSSI  uint8 // -dBm
	DownlinkLQ    uint8
	DownlinkSNR   int8
}

// LinkStatisticsPayloadLen is the size of the link statistics payload.
const LinkStatisticsPayloadLen = 10

// RSSI returns the uplink RSSI in dBm of the active antenna.
func (p *LinkStatistics) RSSI() int {
	if p.ActiveAntenna != 0 {
		return -int(p.UplinkRSSI2)
	}
	return -int(p.UplinkRSSI1)
}

// FrameType implements Payload.
func (p *LinkStatistics) FrameType() FrameType { return TypeLinkStatistics }

// MarshalBinary implements Payload.
func (p *LinkStatistics) MarshalBinary() ([]byte, error) {
	return []byte{
		p.UplinkRSSI1, p.UplinkRSSI2, p.UplinkLQ, byte(p.UplinkSNR),
		p.ActiveAntenna, p.RFMode, p.UplinkTXPower,
		p.DownlinkRSSI, p.DownlinkLQ, byte(p.DownlinkSNR),
	}, nil
}

// UnmarshalBinary implements Payload.
func (p *LinkStatistics) UnmarshalBinary(b []byte) error {
	if len(b) < LinkStatisticsPayloadLen {
		return ErrShortPayload
	}
	p.UplinkRSSI1, p.UplinkRSSI2, p.UplinkLQ = b[0], b[1], b[2]
	p.UplinkSNR = int8(b[3])
	p.ActiveAntenna, p.RFMode, p.UplinkTXPower = b[4], b[5], b[6]
	p.DownlinkRSSI, p.DownlinkLQ = b[7], b[8]
	p.DownlinkSNR = int8(b[9])
	return nil
}
