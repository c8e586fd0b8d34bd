package modbus

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/output"
	"github.com/robotalks/crsf.go/pkg/telemetry"
	"github.com/robotalks/crsf.go/pkg/transport"
)

type testClient struct {
	lock   sync.Mutex
	writes [][]uint16
	addrs  []uint16
	adc    uint16
	reads  int
	err    error
}

func (c *testClient) WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	regs := make([]uint16, quantity)
	for n := range regs {
		regs[n] = binary.BigEndian.Uint16(value[n*2:])
	}
	c.writes = append(c.writes, regs)
	c.addrs = append(c.addrs, address)
	return nil, nil
}

func (c *testClient) ReadInputRegisters(address, quantity uint16) ([]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.reads++
	return []byte{byte(c.adc >> 8), byte(c.adc)}, nil
}

func (c *testClient) lastWrite() []uint16 {
	c.lock.Lock()
	defer c.lock.Unlock()
	if len(c.writes) == 0 {
		return nil
	}
	return c.writes[len(c.writes)-1]
}

func channelsFrame(cs crsf.ChannelSet) []byte {
	f, _ := crsf.NewFrame(crsf.AddrFlightController, &cs)
	return f.Bytes()
}

func TestMirrorSnapshot(t *testing.T) {
	linkEnd, remote := transport.Pipe()
	e := link.NewEngine(link.DefaultConfig(), linkEnd)
	outs := output.New(output.DefaultMap, output.DefaultFailsafe)
	e.AddHandler(outs)
	m := NewMirror(Config{BaseAddress: 100}, &testClient{}, e)
	m.Outputs = outs

	var cs crsf.ChannelSet
	for n := range cs {
		cs[n] = 1500
	}
	cs[0] = 1000
	remote.Write(channelsFrame(cs))
	statsFrame, _ := crsf.NewFrame(crsf.AddrFlightController, &crsf.LinkStatistics{UplinkRSSI1: 70, UplinkLQ: 99})
	remote.Write(statsFrame.Bytes())
	battFrame, _ := crsf.NewFrame(crsf.AddrFlightController, &crsf.Battery{Voltage: 126})
	remote.Write(battFrame.Bytes())
	require.NoError(t, e.Pump(context.Background(), time.Unix(1000, 0)))

	regs := m.Snapshot()
	require.Len(t, regs, NumRegisters)
	require.Equal(t, uint16(1), regs[RegLinkState])
	require.Equal(t, int16(-70), int16(regs[RegRSSI]))
	require.Equal(t, uint16(99), regs[RegLQ])
	require.Equal(t, uint16(126), regs[RegVoltage])
	require.Equal(t, uint16(1000), regs[RegChannels])
	require.Equal(t, uint16(1500), regs[RegChannels+15])
	require.Equal(t, uint16(1000), regs[RegOutputs])
}

func TestMirrorRun(t *testing.T) {
	linkEnd, _ := transport.Pipe()
	e := link.NewEngine(link.DefaultConfig(), linkEnd)
	client := &testClient{adc: telemetry.ADCMax}
	m := NewMirror(Config{BaseAddress: 40, VbatAddress: 7, Interval: time.Millisecond}, client, e)
	sched := telemetry.NewScheduler(nil, time.Second)
	m.Battery = telemetry.NewBatteryMonitor(sched, telemetry.VoltageDivider{R1: 820, R2: 120})
	m.Battery.Interval = 5 * time.Millisecond

	loop := fx.NewLoop()
	loop.Interval = time.Millisecond
	loop.Add(e, m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	require.Eventually(t, func() bool {
		return sched.Len() == 1
	}, 2*time.Second, time.Millisecond)
	regs := client.lastWrite()
	require.Len(t, regs, NumRegisters)
	require.Zero(t, regs[RegLinkState])
	client.lock.Lock()
	require.Equal(t, uint16(40), client.addrs[0])
	require.GreaterOrEqual(t, client.reads, 5)
	client.lock.Unlock()
}

func TestMirrorErrors(t *testing.T) {
	linkEnd, _ := transport.Pipe()
	e := link.NewEngine(link.DefaultConfig(), linkEnd)
	client := &testClient{err: errors.New("timeout")}
	m := NewMirror(Config{}, client, e)
	m.write(m.Snapshot())
	m.write(m.Snapshot())
	require.Equal(t, uint64(2), m.Errors())

	_, err := Dial(Config{}, e)
	require.Error(t, err)
}
