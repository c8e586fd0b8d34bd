package mqtt

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/telemetry"
	"github.com/robotalks/crsf.go/pkg/telemetry/msgs"
	"github.com/robotalks/crsf.go/pkg/transport"
)

type published struct {
	topic   string
	payload []byte
	retain  bool
}

type testBus struct {
	lock     sync.Mutex
	pubs     []published
	handlers map[string]Handler
}

func (b *testBus) Publish(topic string, payload []byte, retain bool) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.pubs = append(b.pubs, published{topic: topic, payload: payload, retain: retain})
	return nil
}

func (b *testBus) Subscribe(topic string, handler Handler) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[string]Handler)
	}
	b.handlers[topic] = handler
}

func (b *testBus) handler(topic string) Handler {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.handlers[topic]
}

func (b *testBus) messages(t *testing.T, topic string) (res []fx.Message) {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, p := range b.pubs {
		if p.topic == topic {
			msg, err := msgs.Unmarshal(p.payload)
			require.NoError(t, err)
			res = append(res, msg)
		}
	}
	return
}

func TestBridgeEvents(t *testing.T) {
	var bus testBus
	now := time.Unix(1000, 0)
	b := NewBridge(&bus, "rx1")
	b.Now = func() time.Time { return now }
	b.Home = &telemetry.HomeTracker{}
	ctx := context.Background()

	b.LinkStateChanged(ctx, link.LinkUp)
	require.Equal(t, []fx.Message{&msgs.LinkState{Up: true}}, bus.messages(t, "rx1/state"))
	require.True(t, bus.pubs[0].retain)

	var cs crsf.ChannelSet
	cs[0] = 1500
	b.HandleChannels(ctx, cs)
	now = now.Add(50 * time.Millisecond)
	b.HandleChannels(ctx, cs)
	now = now.Add(50 * time.Millisecond)
	b.HandleChannels(ctx, cs)
	channels := bus.messages(t, "rx1/channels")
	require.Len(t, channels, 2)
	require.Equal(t, int32(1500), channels[0].(*msgs.Channels).Values[0])

	b.HandleTelemetry(ctx, &crsf.LinkStatistics{UplinkRSSI1: 60, UplinkLQ: 100})
	require.Len(t, bus.messages(t, "rx1/linkstats"), 1)
	b.HandleTelemetry(ctx, &crsf.Battery{Voltage: 120})
	require.Equal(t, []fx.Message{&msgs.Battery{Voltage: 120}}, bus.messages(t, "rx1/sensor/"+crsf.TypeBattery.String()))

	b.HandleTelemetry(ctx, &crsf.GPS{Latitude: 470000000, Longitude: 80000000, Altitude: 1400, Satellites: 8})
	b.HandleTelemetry(ctx, &crsf.GPS{Latitude: 470100000, Longitude: 80000000, Altitude: 1400, Satellites: 8})
	home := bus.messages(t, "rx1/home")
	require.Len(t, home, 2)
	last := home[1].(*msgs.Home)
	require.InDelta(t, 0.01*math.Pi/180*telemetry.EarthRadius, last.Distance, 0.5)
	require.InDelta(t, 47, last.Latitude, 1e-6)
}

func TestBridgeConnected(t *testing.T) {
	var bus testBus
	b := NewBridge(&bus, "rx1")
	b.Meta = map[string]string{"role": "rx"}
	b.LinkStateChanged(context.Background(), link.LinkUp)
	b.Connected()

	require.Len(t, bus.pubs, 3)
	require.Equal(t, "rx1/meta", bus.pubs[1].topic)
	require.True(t, bus.pubs[1].retain)
	var meta map[string]string
	require.NoError(t, json.Unmarshal(bus.pubs[1].payload, &meta))
	require.Equal(t, "rx", meta["role"])
	require.Equal(t, []fx.Message{&msgs.LinkState{Up: true}, &msgs.LinkState{Up: true}}, bus.messages(t, "rx1/state"))
}

func TestBridgeCommands(t *testing.T) {
	var bus testBus
	linkEnd, rxEnd := transport.Pipe()
	conf := link.DefaultConfig()
	conf.Role = link.RoleTransmitter
	e := link.NewEngine(conf, linkEnd)
	b := NewBridge(&bus, "rx1")
	e.AddHandler(b)

	loop := fx.NewLoop()
	loop.Interval = time.Millisecond
	loop.Add(e)
	loop.AddRunnable(b)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	require.Eventually(t, func() bool { return bus.handler("rx1/cmd") != nil }, time.Second, time.Millisecond)
	run := func(msg fx.Message) fx.Message {
		data, err := msgs.Marshal(msg)
		require.NoError(t, err)
		bus.handler("rx1/cmd")("rx1/cmd", data)
		results := bus.messages(t, "rx1/result")
		return results[len(results)-1]
	}

	require.Equal(t, &msgs.CommandOK{}, run(&msgs.Send{Address: 0xc8, Type: uint32(crsf.TypeFlightMode), Payload: []byte("ACRO\x00")}))
	frame := (&crsf.Frame{Address: crsf.AddrFlightController, Type: crsf.TypeFlightMode, Payload: []byte("ACRO\x00")}).Bytes()
	got := make([]byte, 0, len(frame))
	require.Eventually(t, func() bool {
		n, _ := rxEnd.Available()
		for ; n > 0; n-- {
			c, _ := rxEnd.ReadByte()
			got = append(got, c)
		}
		return len(got) >= len(frame)
	}, time.Second, time.Millisecond)
	require.Equal(t, frame, got)

	require.Equal(t, &msgs.CommandOK{}, run(&msgs.Passthrough{Enable: true}))
	res := run(&msgs.Send{Address: 0xc8, Type: uint32(crsf.TypeFlightMode), Payload: []byte("X\x00")})
	require.Equal(t, link.ErrPassthrough.Error(), res.(*msgs.CommandErr).Message)

	res = run(&msgs.LinkState{})
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), res.(*msgs.CommandErr).Message)

	bus.handler("rx1/cmd")("rx1/cmd", []byte{0xff})
	results := bus.messages(t, "rx1/result")
	require.IsType(t, &msgs.CommandErr{}, results[len(results)-1])
}
