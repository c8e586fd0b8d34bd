// Package indicator drives a status LED from the link state.
package indicator

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/warthog618/go-gpiocdev"

	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
)

// BlinkInterval is the LED toggle interval in passthrough mode.
const BlinkInterval = 100 * time.Millisecond

// Pin is an output line.
type Pin interface {
	SetValue(int) error
	Close() error
}

// LED is on while the link is up and blinks in passthrough mode.
type LED struct {
	Pin    Pin
	Engine *link.Engine

	value     int
	set       bool
	lastBlink time.Time
}

// OpenLED requests a GPIO line as the LED.
func OpenLED(chip string, offset int, activeLow bool, e *link.Engine) (*LED, error) {
	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0), gpiocdev.WithConsumer("crsf")}
	if activeLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	l, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, err
	}
	return &LED{Pin: l, Engine: e}, nil
}

// Close turns the LED off and releases the line.
func (l *LED) Close() error {
	l.Pin.SetValue(0)
	return l.Pin.Close()
}

// AddToLoop implements LoopAdder.
func (l *LED) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, l)
}

// LinkStateChanged implements link.LinkNotifier.
func (l *LED) LinkStateChanged(ctx context.Context, state link.LinkState) {
	if state == link.LinkUp {
		l.setValue(1)
	} else {
		l.setValue(0)
	}
}

// Control implements Controller.
func (l *LED) Control(cc fx.ControlContext) error {
	if active, _ := l.Engine.Passthrough(); !active {
		if !l.lastBlink.IsZero() {
			l.lastBlink = time.Time{}
			l.LinkStateChanged(cc.Context(), l.Engine.LinkState())
		}
		return nil
	}
	if now := cc.Time(); now.Sub(l.lastBlink) >= BlinkInterval {
		l.lastBlink = now
		l.setValue(1 - l.value)
	}
	return nil
}

// Value returns the current LED value.
func (l *LED) Value() int {
	return l.value
}

func (l *LED) setValue(v int) {
	if l.set && v == l.value {
		return
	}
	if err := l.Pin.SetValue(v); err != nil {
		glog.Warningf("led: %v", err)
		return
	}
	l.value, l.set = v, true
}
