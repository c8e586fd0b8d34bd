package mqtt

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/telemetry"
	"github.com/robotalks/crsf.go/pkg/telemetry/msgs"
)

// Topics under the link ID.
const (
	TopicMeta      = "meta"
	TopicState     = "state"
	TopicChannels  = "channels"
	TopicLinkStats = "linkstats"
	TopicSensor    = "sensor/"
	TopicHome      = "home"
	TopicCommand   = "cmd"
	TopicResult    = "result"
)

// Bridge defaults.
const (
	DefaultChannelsInterval = 100 * time.Millisecond
	DefaultCommandTimeout   = 2 * time.Second
)

// Bus is the message bus the bridge talks to. Queue implements it.
type Bus interface {
	Publish(topic string, payload []byte, retain bool) error
	Subscribe(topic string, handler Handler)
}

// Bridge publishes link events and runs commands received from the bus.
type Bridge struct {
	Bus    Bus
	LinkID string
	// ChannelsInterval limits the rate channels are published.
	ChannelsInterval time.Duration
	CommandTimeout   time.Duration
	// Home publishes the position relative to home when set.
	Home *telemetry.HomeTracker
	// Meta is published retained on connect.
	Meta map[string]string
	// Now provides time, time.Now if nil.
	Now func() time.Time

	linkUp       atomic.Bool
	lastChannels time.Time
	dropped      atomic.Uint64
}

// NewBridge creates a Bridge.
func NewBridge(bus Bus, linkID string) *Bridge {
	return &Bridge{
		Bus:              bus,
		LinkID:           linkID,
		ChannelsInterval: DefaultChannelsInterval,
		CommandTimeout:   DefaultCommandTimeout,
	}
}

// Dial creates a Queue for a bridge. The meta topic is cleared by the
// broker when the connection is lost.
func Dial(brokerURL, linkID string) (*Queue, error) {
	opts, prefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(prefix+linkID+"/"+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("crsf:" + linkID)
	}
	return NewQueue(opts, prefix), nil
}

// Dropped returns the number of messages which failed to publish.
func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

// Connected publishes retained topics. Set it as Queue.OnConnect.
func (b *Bridge) Connected() {
	meta, err := json.Marshal(b.Meta)
	if err != nil {
		glog.Errorf("meta: %v", err)
		return
	}
	b.publishRaw(TopicMeta, meta, true)
	b.publish(TopicState, &msgs.LinkState{Up: b.linkUp.Load()}, true)
}

// Run implements Runnable. Commands are accepted while running.
func (b *Bridge) Run(ctx context.Context) error {
	lc := fx.LoopCtlFrom(ctx)
	b.Bus.Subscribe(b.LinkID+"/"+TopicCommand, func(topic string, payload []byte) {
		b.runCommand(ctx, lc, payload)
	})
	<-ctx.Done()
	return nil
}

// LinkStateChanged implements link.LinkNotifier.
func (b *Bridge) LinkStateChanged(ctx context.Context, state link.LinkState) {
	b.linkUp.Store(state == link.LinkUp)
	b.publish(TopicState, &msgs.LinkState{Up: state == link.LinkUp}, true)
}

// HandleChannels implements link.ChannelsHandler.
func (b *Bridge) HandleChannels(ctx context.Context, cs crsf.ChannelSet) {
	now := b.now()
	if !b.lastChannels.IsZero() && now.Sub(b.lastChannels) < b.ChannelsInterval {
		return
	}
	b.lastChannels = now
	b.publish(TopicChannels, msgs.FromChannels(cs), false)
}

// HandleTelemetry implements link.TelemetryHandler.
func (b *Bridge) HandleTelemetry(ctx context.Context, p crsf.Payload) {
	msg, err := msgs.FromPayload(p)
	if err != nil {
		glog.V(3).Infof("convert %s: %v", p.FrameType(), err)
		return
	}
	topic := TopicSensor + p.FrameType().String()
	if p.FrameType() == crsf.TypeLinkStatistics {
		topic = TopicLinkStats
	}
	b.publish(topic, msg, false)

	if gps, ok := p.(*crsf.GPS); ok && b.Home != nil {
		if pos, ok := b.Home.Update(gps); ok {
			b.publish(TopicHome, msgs.FromPosition(pos), false)
		}
	}
}

func (b *Bridge) runCommand(ctx context.Context, lc fx.LoopControl, payload []byte) {
	err := b.command(ctx, lc, payload)
	var reply msgs.SerializableMessage = &msgs.CommandOK{}
	if err != nil {
		glog.Warningf("command: %v", err)
		reply = msgs.NewCommandErr(err)
	}
	b.publish(TopicResult, reply, false)
}

func (b *Bridge) command(ctx context.Context, lc fx.LoopControl, payload []byte) error {
	msg, err := msgs.Unmarshal(payload)
	if err != nil {
		return err
	}
	var req link.Request
	switch m := msg.(type) {
	case *msgs.Passthrough:
		req = &link.PassthroughMsg{Enable: m.Enable, Baud: int(m.Baud)}
	case *msgs.Send:
		addr, p := m.Frame()
		req = &link.SendMsg{Address: addr, Payload: p, Unchecked: m.Unchecked}
	default:
		return msgs.ErrUnsupportedCommand
	}
	ctx, cancel := context.WithTimeout(ctx, b.CommandTimeout)
	defer cancel()
	return link.Do(ctx, lc, req)
}

func (b *Bridge) publish(topic string, msg msgs.SerializableMessage, retain bool) {
	data, err := msgs.Marshal(msg)
	if err != nil {
		glog.Errorf("encode %s: %v", topic, err)
		return
	}
	b.publishRaw(topic, data, retain)
}

func (b *Bridge) publishRaw(topic string, data []byte, retain bool) {
	if err := b.Bus.Publish(b.LinkID+"/"+topic, data, retain); err != nil {
		b.dropped.Add(1)
		glog.V(3).Infof("publish %s: %v", topic, err)
	}
}

func (b *Bridge) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}
