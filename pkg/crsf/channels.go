package crsf

// NumChannels is the number of channels in a channel frame.
const NumChannels = 16

// ChannelsPayloadLen is the size of the packed channel payload.
const ChannelsPayloadLen = (NumChannels*11 + 7) / 8

// Raw channel values.
const (
	ChannelRawMin  = 172
	ChannelRaw1000 = 191
	ChannelRawMid  = 992
	ChannelRaw2000 = 1792
	ChannelRawMax  = 1811
	channelRawMask = 0x7ff
)

// RawToMicros converts an 11-bit raw value into microseconds.
func RawToMicros(raw uint16) int {
	return int(raw)*5/8 + 880
}

// MicrosToRaw converts microseconds into an 11-bit raw value. Out of range
// results are clamped to 11 bits.
func MicrosToRaw(us int) uint16 {
	raw := us*8/5 - 1408
	if raw < 0 {
		return 0
	}
	if raw > channelRawMask {
		return channelRawMask
	}
	return uint16(raw)
}

// RawChannels holds 11-bit channel values as on the wire.
type RawChannels [NumChannels]uint16

// UnpackChannels unpacks 16 11-bit values, LSB first.
func UnpackChannels(payload []byte) (raw RawChannels, err error) {
	if len(payload) < ChannelsPayloadLen {
		return raw, ErrShortPayload
	}
	var acc uint32
	var bits uint
	n := 0
	for _, b := range payload[:ChannelsPayloadLen] {
		acc |= uint32(b) << bits
		for bits += 8; bits >= 11; bits -= 11 {
			raw[n] = uint16(acc & channelRawMask)
			acc >>= 11
			n++
		}
	}
	return raw, nil
}

// PackChannels is the inverse of UnpackChannels.
func PackChannels(raw RawChannels) []byte {
	out := make([]byte, 0, ChannelsPayloadLen)
	var acc uint32
	var bits uint
	for _, v := range raw {
		acc |= uint32(v&channelRawMask) << bits
		for bits += 11; bits >= 8; bits -= 8 {
			out = append(out, byte(acc))
			acc >>= 8
		}
	}
	return out
}

// ChannelSet holds decoded channel values in microseconds.
type ChannelSet [NumChannels]int

// ChannelSetFromRaw converts raw values.
func ChannelSetFromRaw(raw RawChannels) (cs ChannelSet) {
	for n, v := range raw {
		cs[n] = RawToMicros(v)
	}
	return
}

// Raw converts the set back into raw values.
func (cs ChannelSet) Raw() (raw RawChannels) {
	for n, us := range cs {
		raw[n] = MicrosToRaw(us)
	}
	return
}

// FrameType implements Payload.
func (cs *ChannelSet) FrameType() FrameType { return TypeChannelsPacked }

// MarshalBinary implements Payload.
func (cs *ChannelSet) MarshalBinary() ([]byte, error) {
	return PackChannels(cs.Raw()), nil
}

// UnmarshalBinary implements Payload.
func (cs *ChannelSet) UnmarshalBinary(data []byte) error {
	raw, err := UnpackChannels(data)
	if err != nil {
		return err
	}
	*cs = ChannelSetFromRaw(raw)
	return nil
}
