package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
)

func TestTypedRoundTrip(t *testing.T) {
	testCases := []SerializableMessage{
		&LinkState{Up: true},
		&Channels{Values: []int32{988, 1500, 2012}},
		&Battery{Voltage: 168, Current: 12, Capacity: 1200, Remaining: 75},
		&GPS{Latitude: -339000000, Longitude: 1512000000, Altitude: -20},
		&Attitude{Pitch: 1.5, Roll: -2.25},
		&FlightMode{Mode: "ACRO"},
		&Home{Distance: 120.5, Bearing: 270},
		&Passthrough{Enable: true, Baud: 115200},
		&Send{Address: 0xee, Type: 0x32, Payload: []byte{'b', 'l'}},
		&CommandOK{},
		&CommandErr{Message: "link down"},
	}
	for _, msg := range testCases {
		t.Run(msg.String(), func(t *testing.T) {
			data, err := Marshal(msg)
			require.NoError(t, err)
			decoded, err := Unmarshal(data)
			require.NoError(t, err)
			require.Equal(t, msg, decoded)
		})
	}
}

func TestTypedKind(t *testing.T) {
	typed, err := TypedFrom(&LinkState{})
	require.NoError(t, err)
	require.True(t, typed.IsEvent())
	typed, err = TypedFrom(&Passthrough{})
	require.NoError(t, err)
	require.False(t, typed.IsEvent())
}

type plainMessage struct{}

func (m *plainMessage) NewMessage() fx.Message { return &plainMessage{} }

func TestTypedErrors(t *testing.T) {
	_, err := TypedFrom(&plainMessage{})
	require.Equal(t, ErrNotSerializable, err)

	_, err = (&Typed{TypeID: 0x1234}).Decode()
	require.Equal(t, &ErrUnknownType{TypeID: 0x1234}, err)

	_, err = DecodeTyped([]byte{0xff})
	require.Error(t, err)
}

func TestFromPayload(t *testing.T) {
	msg, err := FromPayload(&crsf.Battery{Voltage: 111, Remaining: 50})
	require.NoError(t, err)
	require.Equal(t, &Battery{Voltage: 111, Remaining: 50}, msg)

	msg, err = FromPayload(&crsf.LinkStatistics{UplinkRSSI1: 70, UplinkRSSI2: 80, ActiveAntenna: 1, UplinkSNR: -5})
	require.NoError(t, err)
	ls := msg.(*LinkStats)
	require.Equal(t, int32(-80), ls.RSSI)
	require.Equal(t, int32(-5), ls.UplinkSNR)

	msg, err = FromPayload(&crsf.Vario{VerticalSpeed: -200})
	require.NoError(t, err)
	require.Equal(t, &Sensor{Type: uint32(crsf.TypeVario), Payload: []byte{0xff, 0x38}}, msg)

	msg, err = FromPayload(&crsf.FlightMode{Mode: "ANGL"})
	require.NoError(t, err)
	require.Equal(t, &FlightMode{Mode: "ANGL"}, msg)
}

func TestSendFrame(t *testing.T) {
	addr, p := (&Send{Address: 0xec, Type: 0x32, Payload: []byte{'b', 'l'}}).Frame()
	require.Equal(t, crsf.AddrReceiver, addr)
	require.Equal(t, crsf.TypeCommand, p.FrameType())
	data, err := p.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, []byte{'b', 'l'}, data)
}
