package link

import (
	"context"

	"github.com/robotalks/crsf.go/pkg/crsf"
)

// LinkNotifier is called on link state edges.
type LinkNotifier interface {
	LinkStateChanged(context.Context, LinkState)
}

// LinkStateChangedFunc is func type of LinkNotifier.
type LinkStateChangedFunc func(context.Context, LinkState)

// LinkStateChanged implements LinkNotifier.
func (f LinkStateChangedFunc) LinkStateChanged(ctx context.Context, state LinkState) {
	f(ctx, state)
}

// ChannelsHandler is called when a channel frame is decoded.
type ChannelsHandler interface {
	HandleChannels(context.Context, crsf.ChannelSet)
}

// HandleChannelsFunc is func type of ChannelsHandler.
type HandleChannelsFunc func(context.Context, crsf.ChannelSet)

// HandleChannels implements ChannelsHandler.
func (f HandleChannelsFunc) HandleChannels(ctx context.Context, cs crsf.ChannelSet) {
	f(ctx, cs)
}

// TelemetryHandler is called when link statistics or a sensor payload
// is decoded.
type TelemetryHandler interface {
	HandleTelemetry(context.Context, crsf.Payload)
}

// HandleTelemetryFunc is func type of TelemetryHandler.
type HandleTelemetryFunc func(context.Context, crsf.Payload)

// HandleTelemetry implements TelemetryHandler.
func (f HandleTelemetryFunc) HandleTelemetry(ctx context.Context, p crsf.Payload) {
	f(ctx, p)
}

// FrameHandler receives every valid frame, including unknown types.
type FrameHandler interface {
	HandleFrame(context.Context, *crsf.Frame)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, *crsf.Frame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frame *crsf.Frame) {
	f(ctx, frame)
}

// OOBHandler receives bytes outside of frames: bytes dropped while
// resynchronizing and everything read in passthrough mode.
type OOBHandler interface {
	HandleOOB(context.Context, byte)
}

// HandleOOBFunc is func type of OOBHandler.
type HandleOOBFunc func(context.Context, byte)

// HandleOOB implements OOBHandler.
func (f HandleOOBFunc) HandleOOB(ctx context.Context, b byte) {
	f(ctx, b)
}

type handlers struct {
	notifiers []LinkNotifier
	channels  []ChannelsHandler
	telemetry []TelemetryHandler
	frames    []FrameHandler
	oob       []OOBHandler
}

// add registers h for every handler interface it implements.
func (hs *handlers) add(h interface{}) bool {
	var matched bool
	if v, ok := h.(LinkNotifier); ok {
		hs.notifiers, matched = append(hs.notifiers, v), true
	}
	if v, ok := h.(ChannelsHandler); ok {
		hs.channels, matched = append(hs.channels, v), true
	}
	if v, ok := h.(TelemetryHandler); ok {
		hs.telemetry, matched = append(hs.telemetry, v), true
	}
	if v, ok := h.(FrameHandler); ok {
		hs.frames, matched = append(hs.frames, v), true
	}
	if v, ok := h.(OOBHandler); ok {
		hs.oob, matched = append(hs.oob, v), true
	}
	return matched
}
