package sim

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
)

// SweepSticks is the number of channels the handset sweeps.
const SweepSticks = 4

// Handset sends channels and link statistics like a transmitter.
type Handset struct {
	Engine            *link.Engine
	ChannelsInterval  time.Duration
	LinkStatsInterval time.Duration
	SweepPeriod       time.Duration
	LinkStats         crsf.LinkStatistics

	start         time.Time
	lastChannels  time.Time
	lastLinkStats time.Time
	received      atomic.Uint64
}

// NewHandset creates a Handset.
func NewHandset(e *link.Engine) *Handset {
	return &Handset{
		Engine:            e,
		ChannelsInterval:  DefaultChannelsInterval,
		LinkStatsInterval: DefaultLinkStatsInterval,
		SweepPeriod:       DefaultSweepPeriod,
		LinkStats: crsf.LinkStatistics{
			UplinkRSSI1: 60, UplinkRSSI2: 62, UplinkLQ: 100, UplinkSNR: 9,
			RFMode: 4, UplinkTXPower: 2,
			DownlinkRSSI: 58, DownlinkLQ: 100, DownlinkSNR: 8,
		},
	}
}

// AddToLoop implements LoopAdder.
func (h *Handset) AddToLoop(loop *fx.Loop) {
	h.Engine.AddHandler(h)
	loop.AddController(fx.PrLvOutput, h)
}

// Received returns the number of telemetry payloads received.
func (h *Handset) Received() uint64 {
	return h.received.Load()
}

// HandleTelemetry implements link.TelemetryHandler.
func (h *Handset) HandleTelemetry(ctx context.Context, p crsf.Payload) {
	h.received.Add(1)
	glog.V(1).Infof("telemetry %s", p.FrameType())
}

// Sweep returns the stick positions at elapsed time. Sticks move on
// sines a quarter period apart, the other channels stay centered.
func (h *Handset) Sweep(elapsed time.Duration) (cs crsf.ChannelSet) {
	for n := range cs {
		cs[n] = 1500
	}
	if h.SweepPeriod <= 0 {
		return
	}
	phase := 2 * math.Pi * float64(elapsed) / float64(h.SweepPeriod)
	for n := 0; n < SweepSticks; n++ {
		cs[n] = 1500 + int(math.Round(400*math.Sin(phase+float64(n)*math.Pi/2)))
	}
	return
}

// Control implements Controller.
func (h *Handset) Control(cc fx.ControlContext) error {
	now := cc.Time()
	if h.start.IsZero() {
		h.start = now
	}
	if now.Sub(h.lastChannels) >= h.ChannelsInterval {
		h.lastChannels = now
		for n, us := range h.Sweep(now.Sub(h.start)) {
			h.Engine.SetChannel(n+1, us)
		}
		if err := h.Engine.SendChannels(); err != nil && !link.IsSuppressed(err) {
			return err
		}
	}
	if h.LinkStatsInterval > 0 && now.Sub(h.lastLinkStats) >= h.LinkStatsInterval {
		h.lastLinkStats = now
		if err := h.Engine.SendTelemetry(&h.LinkStats); err != nil && !link.IsSuppressed(err) {
			return err
		}
	}
	return nil
}
