package link

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crsf.go/pkg/crsf"
)

type testTransport struct {
	in      bytes.Buffer
	out     bytes.Buffer
	reopens []int
	err     error
}

func (t *testTransport) Available() (int, error) { return t.in.Len(), t.err }
func (t *testTransport) ReadByte() (byte, error) { return t.in.ReadByte() }
func (t *testTransport) Write(p []byte) (int, error) {
	return t.out.Write(p)
}
func (t *testTransport) Reopen(baud int) error {
	t.reopens = append(t.reopens, baud)
	return nil
}

type testRecorder struct {
	states    []LinkState
	channels  []crsf.ChannelSet
	telemetry []crsf.Payload
	frames    []*crsf.Frame
	oob       []byte
}

func (r *testRecorder) LinkStateChanged(ctx context.Context, state LinkState) {
	r.states = append(r.states, state)
}

func (r *testRecorder) HandleChannels(ctx context.Context, cs crsf.ChannelSet) {
	r.channels = append(r.channels, cs)
}

func (r *testRecorder) HandleTelemetry(ctx context.Context, p crsf.Payload) {
	r.telemetry = append(r.telemetry, p)
}

func (r *testRecorder) HandleFrame(ctx context.Context, f *crsf.Frame) {
	r.frames = append(r.frames, f)
}

func (r *testRecorder) HandleOOB(ctx context.Context, b byte) {
	r.oob = append(r.oob, b)
}

type engineTest struct {
	t   *testing.T
	tr  *testTransport
	rec *testRecorder
	e   *Engine
	now time.Time
}

func newEngineTest(t *testing.T, conf Config) *engineTest {
	et := &engineTest{
		t:   t,
		tr:  &testTransport{},
		rec: &testRecorder{},
		now: time.Unix(1000, 0),
	}
	et.e = NewEngine(conf, et.tr).AddHandler(et.rec)
	return et
}

func (et *engineTest) feed(data ...byte) *engineTest {
	et.tr.in.Write(data)
	return et.pump()
}

func (et *engineTest) pump() *engineTest {
	require.NoError(et.t, et.e.Pump(context.Background(), et.now))
	return et
}

func (et *engineTest) after(d time.Duration) *engineTest {
	et.now = et.now.Add(d)
	return et
}

var (
	zeroChannelsFrame = frameBytes(crsf.AddrTransmitter, crsf.TypeChannelsPacked, make([]byte, crsf.ChannelsPayloadLen)...)
	linkStatsFrame    = frameBytes(crsf.AddrFlightController, crsf.TypeLinkStatistics, 50, 60, 100, 0xf6, 0, 4, 3, 70, 99, 5)
)

func TestEngineZeroChannels(t *testing.T) {
	et := newEngineTest(t, DefaultConfig())
	require.Equal(t, []byte{0xee, 0x18, 0x16}, zeroChannelsFrame[:3])
	et.feed(zeroChannelsFrame...)
	require.Len(t, et.rec.channels, 1)
	for n := 1; n <= crsf.NumChannels; n++ {
		require.Equal(t, 880, et.e.Channel(n))
		require.Equal(t, 880, et.rec.channels[0][n-1])
	}
	require.Empty(t, et.rec.oob)
}

func TestEngineChannelsExtraPayload(t *testing.T) {
	et := newEngineTest(t, DefaultConfig())
	f := frameBytes(crsf.AddrTransmitter, crsf.TypeChannelsPacked, make([]byte, crsf.ChannelsPayloadLen+2)...)
	require.Equal(t, byte(0x1a), f[1])
	et.feed(f...)
	require.Len(t, et.rec.channels, 1)
	require.Equal(t, 880, et.e.Channel(16))
}

func TestEngineLinkState(t *testing.T) {
	et := newEngineTest(t, DefaultConfig())
	require.Equal(t, LinkDown, et.e.LinkState())

	et.feed(linkStatsFrame...)
	require.Equal(t, LinkDown, et.e.LinkState())
	require.Empty(t, et.rec.states)

	et.feed(zeroChannelsFrame...)
	require.Equal(t, []LinkState{LinkUp}, et.rec.states)
	et.after(100 * time.Millisecond).feed(zeroChannelsFrame...)
	et.after(100 * time.Millisecond).feed(zeroChannelsFrame...)
	require.Equal(t, []LinkState{LinkUp}, et.rec.states)

	et.after(300 * time.Millisecond).pump()
	require.Equal(t, []LinkState{LinkUp}, et.rec.states)
	et.after(time.Millisecond).pump()
	require.Equal(t, []LinkState{LinkUp, LinkDown}, et.rec.states)
	et.after(time.Second).pump()
	require.Equal(t, []LinkState{LinkUp, LinkDown}, et.rec.states)

	et.feed(zeroChannelsFrame...)
	require.Equal(t, []LinkState{LinkUp, LinkDown, LinkUp}, et.rec.states)
}

func TestEngineIdleFlush(t *testing.T) {
	et := newEngineTest(t, DefaultConfig())
	et.feed(batteryFrame[:5]...)
	require.Empty(t, et.rec.oob)
	et.after(100 * time.Millisecond).pump()
	require.Empty(t, et.rec.oob)
	et.after(time.Millisecond).pump()
	require.Equal(t, batteryFrame[:5], et.rec.oob)
	require.Equal(t, uint64(5), et.e.Stats().Discarded)

	et.feed(batteryFrame...)
	require.Len(t, et.rec.telemetry, 1)
}

func TestEngineShortLengthScenario(t *testing.T) {
	et := newEngineTest(t, DefaultConfig())
	et.feed(0x00, 0x02)
	require.Equal(t, []byte{0x00}, et.rec.oob)
	require.Empty(t, et.rec.frames)
	require.Equal(t, 1, et.e.assembler.Pending())
}

func TestEngineTelemetry(t *testing.T) {
	et := newEngineTest(t, DefaultConfig())
	gps := frameBytes(crsf.AddrFlightController, crsf.TypeGPS,
		0x1d, 0x47, 0xa4, 0xf0, 0xf9, 0x66, 0x3c, 0xb0, 0x00, 0x7b, 0x46, 0x50, 0x04, 0x1a, 0x0c)
	unknown := frameBytes(crsf.AddrFlightController, crsf.TypeDeviceInfo, 1, 2, 3)
	short := frameBytes(crsf.AddrFlightController, crsf.TypeBattery, 1, 2)
	var in []byte
	for _, f := range [][]byte{linkStatsFrame, batteryFrame, gps, unknown, short, varioFrame} {
		in = append(in, f...)
	}
	et.feed(in...)

	require.Len(t, et.rec.frames, 6)
	require.Len(t, et.rec.telemetry, 4)
	ls := et.e.LinkStatistics()
	require.Equal(t, -50, ls.RSSI())
	require.Equal(t, uint8(100), ls.UplinkLQ)
	require.Equal(t, &crsf.Battery{Voltage: 168, Current: 12, Capacity: 1200, Remaining: 75}, et.e.Sensor(crsf.TypeBattery))
	require.Equal(t, &crsf.Vario{VerticalSpeed: -200}, et.e.Sensor(crsf.TypeVario))
	g, ok := et.e.GPS()
	require.True(t, ok)
	require.Equal(t, uint8(12), g.Satellites)
	require.Nil(t, et.e.Sensor(crsf.TypeDeviceInfo))

	stats := et.e.Stats()
	require.Equal(t, uint64(6), stats.Frames)
	require.Equal(t, uint64(1), stats.UnknownTypes)
	require.Equal(t, uint64(1), stats.DecodeErrors)
}

func TestEngineAddressFilter(t *testing.T) {
	conf := DefaultConfig()
	conf.AddressFilter = true
	et := newEngineTest(t, conf)
	et.feed(zeroChannelsFrame...)
	require.Empty(t, et.rec.channels)
	require.Equal(t, LinkDown, et.e.LinkState())
	et.feed(batteryFrame...)
	require.Len(t, et.rec.telemetry, 1)
	require.Equal(t, uint64(1), et.e.Stats().Filtered)
}

func TestEngineSendGating(t *testing.T) {
	et := newEngineTest(t, DefaultConfig())
	battery := &crsf.Battery{Voltage: 168, Current: 12, Capacity: 1200, Remaining: 75}

	require.Equal(t, ErrNotReady, et.e.SendTelemetry(battery))
	require.Zero(t, et.tr.out.Len())

	et.feed(zeroChannelsFrame...)
	require.NoError(t, et.e.SendTelemetry(battery))
	require.Equal(t, batteryFrame, et.tr.out.Bytes())

	et.tr.out.Reset()
	require.Equal(t, crsf.ErrPayloadTooLarge, et.e.Send(crsf.AddrReceiver, crsf.TypeCommand, make([]byte, crsf.MaxPayloadLen+1)))
	require.NoError(t, et.e.Send(crsf.AddrReceiver, crsf.TypeCommand, make([]byte, crsf.MaxPayloadLen)))
	require.Equal(t, crsf.BufferSize, et.tr.out.Len())

	et.tr.out.Reset()
	require.NoError(t, et.e.SetPassthrough(true, 0))
	require.Equal(t, ErrPassthrough, et.e.SendTelemetry(battery))
	require.Zero(t, et.tr.out.Len())

	stats := et.e.Stats()
	require.Equal(t, uint64(2), stats.Sent)
	require.Equal(t, uint64(2), stats.Suppressed)
}

func TestEngineTransmitterRole(t *testing.T) {
	conf := DefaultConfig()
	conf.Role = RoleTransmitter
	et := newEngineTest(t, conf)
	et.e.SetChannel(1, 1000)
	et.e.SetChannel(17, 1000)
	require.NoError(t, et.e.SendChannels())
	f, err := crsf.ParseFrame(et.tr.out.Bytes())
	require.NoError(t, err)
	require.Equal(t, crsf.TypeChannelsPacked, f.Type)
	var cs crsf.ChannelSet
	require.NoError(t, cs.UnmarshalBinary(f.Payload))
	require.Equal(t, 1000, cs[0])
	require.Equal(t, 1500, cs[1])
}

func TestEngineSendGuard(t *testing.T) {
	conf := DefaultConfig()
	conf.Role = RoleTransmitter
	conf.SendGuard = 2 * time.Millisecond
	et := newEngineTest(t, conf)
	et.feed(linkStatsFrame...)
	require.Equal(t, ErrWouldBlock, et.e.SendChannels())
	et.after(2 * time.Millisecond).pump()
	require.NoError(t, et.e.SendChannels())
}

func TestEnginePassthrough(t *testing.T) {
	conf := DefaultConfig()
	conf.PassthroughIdle = 5 * time.Second
	et := newEngineTest(t, conf)
	et.feed(batteryFrame[:4]...)

	require.NoError(t, et.e.EnterPassthrough(115200))
	reboot, err := crsf.ParseFrame(et.tr.out.Bytes())
	require.NoError(t, err)
	require.Equal(t, crsf.AddrReceiver, reboot.Address)
	require.Equal(t, crsf.TypeCommand, reboot.Type)
	require.Equal(t, []byte{'b', 'l'}, reboot.Payload)
	require.Equal(t, []int{115200}, et.tr.reopens)
	active, baud := et.e.Passthrough()
	require.True(t, active)
	require.Equal(t, 115200, baud)

	et.feed(batteryFrame...)
	require.Empty(t, et.rec.telemetry)
	// the partial frame buffered before passthrough comes out first
	require.Equal(t, append(append([]byte(nil), batteryFrame[:4]...), batteryFrame...), et.rec.oob)
	require.Zero(t, et.e.assembler.Pending())

	et.tr.out.Reset()
	n, err := et.e.WritePassthrough([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", et.tr.out.String())

	et.after(5 * time.Second).pump()
	active, _ = et.e.Passthrough()
	require.True(t, active)
	et.after(time.Millisecond).pump()
	active, _ = et.e.Passthrough()
	require.False(t, active)
	require.Equal(t, []int{115200, DefaultBaud}, et.tr.reopens)

	_, err = et.e.WritePassthrough([]byte("x"))
	require.Equal(t, ErrNotPassthrough, err)
	et.feed(batteryFrame...)
	require.Len(t, et.rec.telemetry, 1)
}

type orderRecorder []string

func (r *orderRecorder) HandleFrame(ctx context.Context, f *crsf.Frame) {
	*r = append(*r, fmt.Sprintf("frame %02x", byte(f.Type)))
}

func (r *orderRecorder) HandleOOB(ctx context.Context, b byte) {
	*r = append(*r, fmt.Sprintf("oob %02x", b))
}

func TestEngineOOBWireOrder(t *testing.T) {
	et := newEngineTest(t, DefaultConfig())
	var order orderRecorder
	et.e.AddHandler(&order)
	in := append([]byte{0x00, 20}, batteryFrame...)
	in = append(in, bytes.Repeat([]byte{0xff}, 8)...)
	et.feed(in...)
	require.Equal(t, orderRecorder{
		"oob 00", "oob 14", "frame 08",
		"oob ff", "oob ff", "oob ff", "oob ff", "oob ff", "oob ff", "oob ff",
	}, order)
}

func TestEnginePassthroughSameBaud(t *testing.T) {
	et := newEngineTest(t, DefaultConfig())
	require.NoError(t, et.e.EnterPassthrough(0))
	require.Zero(t, et.tr.out.Len())
	require.NoError(t, et.e.SetPassthrough(false, 0))
	require.Empty(t, et.tr.reopens)
}

func TestEngineTransportError(t *testing.T) {
	et := newEngineTest(t, DefaultConfig())
	et.tr.err = errors.New("gone")
	require.EqualError(t, et.e.Pump(context.Background(), et.now), "gone")
}

func TestEngineNoHandler(t *testing.T) {
	require.Panics(t, func() {
		NewEngine(DefaultConfig(), &testTransport{}).AddHandler(42)
	})
}
