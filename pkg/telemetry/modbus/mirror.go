// Package modbus mirrors the link onto Modbus holding registers, so a PLC
// or an IO board can drive servos from it, and samples the battery
// voltage from an input register.
package modbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goburrow/modbus"
	"github.com/golang/glog"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/output"
	"github.com/robotalks/crsf.go/pkg/telemetry"
)

// Register layout relative to the base address.
const (
	RegLinkState = 0
	RegRSSI      = 1 // negative dBm as int16
	RegLQ        = 2
	RegVoltage   = 3 // decivolts
	RegChannels  = 4
	RegOutputs   = RegChannels + crsf.NumChannels
	// NumRegisters with output.NumOutputs outputs.
	NumRegisters = RegOutputs + output.NumOutputs
)

// DefaultInterval is the default interval of register updates.
const DefaultInterval = 20 * time.Millisecond

// Client is the part of modbus.Client used by Mirror.
type Client interface {
	WriteMultipleRegisters(address, quantity uint16, value []byte) ([]byte, error)
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
}

// Config defines the mirror options.
type Config struct {
	Endpoint string
	SlaveID  byte
	Timeout  time.Duration
	// BaseAddress is the first holding register.
	BaseAddress uint16
	// VbatAddress is the input register of the battery ADC, sampled when
	// the mirror has a BatteryMonitor.
	VbatAddress uint16
	Interval    time.Duration
}

// Mirror writes snapshots of the link state to holding registers.
type Mirror struct {
	Config  Config
	Client  Client
	Engine  *link.Engine
	Outputs *output.Outputs
	Battery *telemetry.BatteryMonitor

	handler   *modbus.TCPClientHandler
	snapshots chan []uint16
	lastTaken time.Time

	lock     sync.Mutex
	errCount uint64
}

// Dial connects a Mirror over Modbus TCP.
func Dial(conf Config, e *link.Engine) (*Mirror, error) {
	if conf.Endpoint == "" {
		return nil, errors.New("modbus: endpoint required")
	}
	h := modbus.NewTCPClientHandler(conf.Endpoint)
	h.Timeout = conf.Timeout
	h.SlaveId = conf.SlaveID
	if err := h.Connect(); err != nil {
		return nil, err
	}
	m := NewMirror(conf, modbus.NewClient(h), e)
	m.handler = h
	return m, nil
}

// NewMirror creates a Mirror on a client.
func NewMirror(conf Config, client Client, e *link.Engine) *Mirror {
	if conf.Interval <= 0 {
		conf.Interval = DefaultInterval
	}
	return &Mirror{
		Config:    conf,
		Client:    client,
		Engine:    e,
		snapshots: make(chan []uint16, 1),
	}
}

// Errors returns the number of failed requests.
func (m *Mirror) Errors() uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.errCount
}

// AddToLoop implements LoopAdder.
func (m *Mirror) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvOutput, m)
}

// Control implements Controller. It takes a snapshot for the writer,
// replacing one not written yet.
func (m *Mirror) Control(cc fx.ControlContext) error {
	now := cc.Time()
	if !m.lastTaken.IsZero() && now.Sub(m.lastTaken) < m.Config.Interval {
		return nil
	}
	m.lastTaken = now
	regs := m.Snapshot()
	select {
	case <-m.snapshots:
	default:
	}
	m.snapshots <- regs
	return nil
}

// Snapshot encodes the current state into registers. It must be called
// inside the loop.
func (m *Mirror) Snapshot() []uint16 {
	regs := make([]uint16, NumRegisters)
	if m.Engine.LinkState() == link.LinkUp {
		regs[RegLinkState] = 1
	}
	ls := m.Engine.LinkStatistics()
	regs[RegRSSI] = uint16(int16(ls.RSSI()))
	regs[RegLQ] = uint16(ls.UplinkLQ)
	if batt, ok := m.Engine.Sensor(crsf.TypeBattery).(*crsf.Battery); ok {
		regs[RegVoltage] = batt.Voltage
	} else if m.Battery != nil {
		regs[RegVoltage] = uint16(m.Battery.Decivolts())
	}
	for n, v := range m.Engine.Channels() {
		regs[RegChannels+n] = uint16(v)
	}
	if m.Outputs != nil {
		for n, v := range m.Outputs.Values() {
			if n < output.NumOutputs {
				regs[RegOutputs+n] = uint16(v)
			}
		}
	}
	return regs
}

// Run implements Runnable. It writes snapshots and samples the battery.
func (m *Mirror) Run(ctx context.Context) error {
	defer m.close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case regs := <-m.snapshots:
			m.write(regs)
			if m.Battery != nil && m.Battery.Due(time.Now()) {
				m.sample(time.Now())
			}
		}
	}
}

func (m *Mirror) write(regs []uint16) {
	if _, err := m.Client.WriteMultipleRegisters(m.Config.BaseAddress, uint16(len(regs)), packRegisters(regs)); err != nil {
		m.failed("write registers", err)
	}
}

func (m *Mirror) sample(now time.Time) {
	data, err := m.Client.ReadInputRegisters(m.Config.VbatAddress, 1)
	if err != nil {
		m.failed("read vbat", err)
		return
	}
	if len(data) < 2 {
		m.failed("read vbat", errors.New("short response"))
		return
	}
	if m.Battery.Sample(now, int(data[0])<<8|int(data[1])) {
		glog.V(2).Infof("vbat %d dV", m.Battery.Decivolts())
	}
}

func (m *Mirror) failed(op string, err error) {
	m.lock.Lock()
	m.errCount++
	n := m.errCount
	m.lock.Unlock()
	// logged on powers of two
	if n&(n-1) == 0 {
		glog.Warningf("modbus %s: %v (%d errors)", op, err, n)
	}
}

func (m *Mirror) close() {
	if m.handler != nil {
		m.handler.Close()
	}
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}
