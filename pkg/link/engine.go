package link

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/crsf.go/pkg/crsf"
)

// Transport is the byte channel the engine runs on.
type Transport interface {
	io.Writer
	// Available returns the number of bytes readable without blocking.
	Available() (int, error)
	// ReadByte reads one byte. It's only called for available bytes.
	ReadByte() (byte, error)
	// Reopen reopens the port with a new baud rate.
	Reopen(baud int) error
}

// Defaults.
const (
	DefaultBaud          = 420000
	DefaultPacketTimeout = 100 * time.Millisecond
)

// Config defines the engine options.
type Config struct {
	Role Role
	// Baud is the protocol baud rate, restored when passthrough ends.
	Baud int
	// Address is the source address of frames sent by the engine.
	Address crsf.Address
	// PacketTimeout flushes a partial frame after the line is idle.
	PacketTimeout time.Duration
	// FailsafeTimeout declares the link down without channel frames.
	FailsafeTimeout time.Duration
	// SendGuard holds sends for this long after the last received byte.
	SendGuard time.Duration
	// PassthroughIdle leaves passthrough mode after no traffic in either
	// direction for this long, 0 to stay forever.
	PassthroughIdle time.Duration
	// AddressFilter drops frames not addressed to FilterAddress.
	AddressFilter bool
	FilterAddress crsf.Address
}

// DefaultConfig returns the default engine config.
func DefaultConfig() Config {
	return Config{
		Role:            RoleReceiver,
		Baud:            DefaultBaud,
		Address:         crsf.AddrFlightController,
		PacketTimeout:   DefaultPacketTimeout,
		FailsafeTimeout: DefaultFailsafeTimeout,
		FilterAddress:   crsf.AddrFlightController,
	}
}

// Stats are counters of engine activities.
type Stats struct {
	Bytes          uint64
	Frames         uint64
	CRCErrors      uint64
	LengthErrors   uint64
	Overflows      uint64
	Discarded      uint64
	Filtered       uint64
	UnknownTypes   uint64
	DecodeErrors   uint64
	Sent           uint64
	Suppressed     uint64
	PassthroughIn  uint64
	PassthroughOut uint64
}

// Engine owns the state of one link.
type Engine struct {
	Config    Config
	Transport Transport

	assembler Assembler
	monitor   Monitor
	gate      Gate
	sender    Sender
	handlers  handlers

	now             time.Time
	lastRecv        time.Time
	lastPassthrough time.Time

	channels    crsf.ChannelSet
	channelsOut crsf.ChannelSet
	linkStats   crsf.LinkStatistics
	sensors     map[crsf.FrameType]crsf.Payload
	stats       Stats
}

// NewEngine creates an Engine.
func NewEngine(conf Config, t Transport) *Engine {
	e := &Engine{
		Config:    conf,
		Transport: t,
		sensors:   make(map[crsf.FrameType]crsf.Payload),
	}
	if e.Config.Baud == 0 {
		e.Config.Baud = DefaultBaud
	}
	if e.Config.PacketTimeout <= 0 {
		e.Config.PacketTimeout = DefaultPacketTimeout
	}
	e.monitor.Timeout = e.Config.FailsafeTimeout
	e.sender = Sender{
		Writer:  t,
		Role:    e.Config.Role,
		Gate:    &e.gate,
		Monitor: &e.monitor,
		Guard:   e.Config.SendGuard,
	}
	for n := range e.channelsOut {
		e.channelsOut[n] = crsf.RawToMicros(crsf.ChannelRawMid)
	}
	return e
}

// AddHandler registers h for every handler interface it implements.
func (e *Engine) AddHandler(hs ...interface{}) *Engine {
	for _, h := range hs {
		if !e.handlers.add(h) {
			panic(fmt.Sprintf("%T implements no handler interface", h))
		}
	}
	return e
}

// Pump drains available bytes and polls the timers. It never blocks.
func (e *Engine) Pump(ctx context.Context, now time.Time) error {
	e.now = now
	n, err := e.Transport.Available()
	if err != nil {
		return err
	}
	if e.gate.Active() && e.assembler.Pending() > 0 {
		// bytes buffered before passthrough started
		e.apply(ctx, now, e.assembler.Flush())
	}
	for ; n > 0; n-- {
		b, err := e.Transport.ReadByte()
		if err != nil {
			return err
		}
		e.stats.Bytes++
		e.lastRecv = now
		e.sender.Received(now)
		if e.gate.Active() {
			e.stats.PassthroughIn++
			e.lastPassthrough = now
			e.emitOOB(ctx, b)
			continue
		}
		e.apply(ctx, now, e.assembler.Parse(b))
	}

	if e.assembler.Pending() > 0 && now.Sub(e.lastRecv) > e.Config.PacketTimeout {
		pr := e.assembler.Flush()
		glog.V(3).Infof("idle flush %d bytes", len(pr.Discarded))
		e.apply(ctx, now, pr)
	}
	if e.monitor.Check(now) {
		glog.Infof("link %s", LinkDown)
		e.notify(ctx, LinkDown)
	}
	if e.gate.Active() && e.Config.PassthroughIdle > 0 {
		if e.lastPassthrough.IsZero() {
			e.lastPassthrough = now
		} else if now.Sub(e.lastPassthrough) > e.Config.PassthroughIdle {
			glog.Infof("passthrough idle for %s", now.Sub(e.lastPassthrough))
			return e.SetPassthrough(false, 0)
		}
	}
	return nil
}

// LinkState gets the link state.
func (e *Engine) LinkState() LinkState {
	return e.monitor.State()
}

// Channels gets the last decoded channels.
func (e *Engine) Channels() crsf.ChannelSet {
	return e.channels
}

// Channel gets a channel value by its 1-based number.
func (e *Engine) Channel(n int) int {
	if n < 1 || n > crsf.NumChannels {
		return 0
	}
	return e.channels[n-1]
}

// LinkStatistics gets the last link statistics.
func (e *Engine) LinkStatistics() crsf.LinkStatistics {
	return e.linkStats
}

// Sensor gets the last decoded payload of a frame type, or nil.
func (e *Engine) Sensor(t crsf.FrameType) crsf.Payload {
	return e.sensors[t]
}

// GPS gets the last GPS payload.
func (e *Engine) GPS() (gps crsf.GPS, ok bool) {
	if p, found := e.sensors[crsf.TypeGPS].(*crsf.GPS); found {
		return *p, true
	}
	return
}

// Stats gets the counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Passthrough indicates passthrough mode and its baud rate.
func (e *Engine) Passthrough() (bool, int) {
	return e.gate.Active(), e.gate.Baud()
}

// Send sends a raw payload.
func (e *Engine) Send(addr crsf.Address, typ crsf.FrameType, payload []byte) error {
	return e.counted(e.sender.Send(e.now, addr, typ, payload))
}

// SendPayload encodes and sends p to addr.
func (e *Engine) SendPayload(addr crsf.Address, p crsf.Payload) error {
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	return e.Send(addr, p.FrameType(), data)
}

// SendTelemetry sends p from the configured address.
func (e *Engine) SendTelemetry(p crsf.Payload) error {
	return e.SendPayload(e.Config.Address, p)
}

// SetChannel sets an outgoing channel value in microseconds by its
// 1-based number.
func (e *Engine) SetChannel(n, us int) {
	if n >= 1 && n <= crsf.NumChannels {
		e.channelsOut[n-1] = us
	}
}

// OutgoingChannels gets the channel values SendChannels sends.
func (e *Engine) OutgoingChannels() crsf.ChannelSet {
	return e.channelsOut
}

// SendChannels sends the outgoing channels as a handset does.
func (e *Engine) SendChannels() error {
	return e.SendTelemetry(&e.channelsOut)
}

// SetPassthrough enters or leaves passthrough mode. Baud 0 keeps the
// current baud rate.
func (e *Engine) SetPassthrough(enable bool, baud int) error {
	var reopen int
	if enable {
		reopen = e.gate.Enter(baud, e.Config.Baud)
		e.lastPassthrough = time.Time{}
	} else {
		if !e.gate.Active() {
			return nil
		}
		reopen = e.gate.Exit(e.Config.Baud)
	}
	glog.Infof("passthrough enabled=%v baud=%d", enable, baud)
	if reopen != 0 {
		glog.Infof("reopen at %d", reopen)
		if err := e.Transport.Reopen(reopen); err != nil {
			return fmt.Errorf("reopen at %d: %v", reopen, err)
		}
	}
	return nil
}

// EnterPassthrough enters passthrough mode the way a flight controller
// does for flashing: when the baud rate changes, the receiver is told to
// reboot into its bootloader first.
func (e *Engine) EnterPassthrough(baud int) error {
	if baud != 0 && baud != e.Config.Baud && !e.gate.Active() {
		reboot := crsf.RebootToBootloader()
		if err := e.sender.SendUnchecked(crsf.AddrReceiver, reboot.FrameType(), reboot.Data); err != nil {
			return err
		}
		e.stats.Sent++
	}
	return e.SetPassthrough(true, baud)
}

// WritePassthrough writes raw bytes in passthrough mode.
func (e *Engine) WritePassthrough(data []byte) (int, error) {
	if !e.gate.Active() {
		return 0, ErrNotPassthrough
	}
	n, err := e.Transport.Write(data)
	e.stats.PassthroughOut += uint64(n)
	if n > 0 {
		e.lastPassthrough = e.now
	}
	return n, err
}

func (e *Engine) counted(err error) error {
	switch {
	case err == nil:
		e.stats.Sent++
	case IsSuppressed(err):
		e.stats.Suppressed++
		glog.V(3).Infof("send suppressed: %v", err)
	}
	return err
}

func (e *Engine) apply(ctx context.Context, now time.Time, pr ParseResult) {
	e.stats.CRCErrors += uint64(pr.CRCErrors)
	e.stats.LengthErrors += uint64(pr.LengthErrors)
	e.stats.Discarded += uint64(len(pr.Discarded))
	if pr.Overflow > 0 {
		e.stats.Overflows++
		glog.V(3).Infof("overflow, %d bytes dropped", pr.Overflow)
	}
	var pos int
	for i, f := range pr.Frames {
		for ; pos < pr.FrameOffsets[i]; pos++ {
			e.emitOOB(ctx, pr.Discarded[pos])
		}
		e.dispatch(ctx, now, f)
	}
	for ; pos < len(pr.Discarded); pos++ {
		e.emitOOB(ctx, pr.Discarded[pos])
	}
}

func (e *Engine) dispatch(ctx context.Context, now time.Time, f *crsf.Frame) {
	e.stats.Frames++
	if e.Config.AddressFilter && f.Address != e.Config.FilterAddress {
		e.stats.Filtered++
		return
	}
	if glog.V(2) {
		glog.Infof("RCV %s->%s %d bytes", f.Type, f.Address, len(f.Payload))
	}
	for _, h := range e.handlers.frames {
		h.HandleFrame(ctx, f)
	}

	if f.Type == crsf.TypeChannelsPacked {
		var cs crsf.ChannelSet
		if err := cs.UnmarshalBinary(f.Payload); err != nil {
			e.stats.DecodeErrors++
			return
		}
		e.channels = cs
		if e.monitor.ChannelsReceived(now) {
			glog.Infof("link %s", LinkUp)
			e.notify(ctx, LinkUp)
		}
		for _, h := range e.handlers.channels {
			h.HandleChannels(ctx, cs)
		}
		return
	}

	p, err := f.Decode()
	if err != nil {
		if _, ok := err.(*crsf.ErrUnknownType); ok {
			e.stats.UnknownTypes++
		} else {
			e.stats.DecodeErrors++
		}
		glog.V(3).Infof("drop %s: %v", f.Type, err)
		return
	}
	if ls, ok := p.(*crsf.LinkStatistics); ok {
		e.linkStats = *ls
	} else {
		e.sensors[f.Type] = p
	}
	for _, h := range e.handlers.telemetry {
		h.HandleTelemetry(ctx, p)
	}
}

func (e *Engine) notify(ctx context.Context, state LinkState) {
	for _, h := range e.handlers.notifiers {
		h.LinkStateChanged(ctx, state)
	}
}

func (e *Engine) emitOOB(ctx context.Context, b byte) {
	for _, h := range e.handlers.oob {
		h.HandleOOB(ctx, b)
	}
}
