package joystick

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/joystick/device"
	"github.com/robotalks/crsf.go/pkg/link"
)

// Controller turns a joystick into a handset: events set outgoing
// channels, which are sent every SendInterval.
type Controller struct {
	Engine       *link.Engine
	DeviceIndex  int
	Mapping      Mapping
	SendInterval time.Duration
	Verbose      bool
	// Open opens a device, device.Open or device.DetectAndOpen if nil.
	Open func(index int) (device.Device, error)

	eventCh     chan device.Event
	device      device.Device
	deviceTimer <-chan time.Time
	connected   bool
	lastSent    time.Time
}

// NewController creates a Controller.
func NewController(e *link.Engine) *Controller {
	return &Controller{
		Engine:       e,
		DeviceIndex:  defaultConfig.DeviceIndex,
		Mapping:      DefaultMapping(),
		SendInterval: defaultConfig.SendInterval,
	}
}

// AddToLoop implements LoopAdder. The loop also starts Run.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, c)
}

// Connected indicates a joystick is opened.
func (c *Controller) Connected() bool {
	return c.connected
}

func (c *Controller) open() (device.Device, error) {
	if c.Open != nil {
		return c.Open(c.DeviceIndex)
	}
	if c.DeviceIndex >= 0 {
		return device.Open(c.DeviceIndex)
	}
	return device.DetectAndOpen(0)
}

// Run implements Runnable. It opens the joystick and reopens it when
// lost.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		if c.device != nil {
			c.device.Close()
		}
	}()
	loopCtl := fx.LoopCtlFrom(ctx)
	c.deviceTimer = time.After(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.deviceTimer:
			c.deviceTimer = nil
			js, err := c.open()
			if err != nil || js == nil {
				if err != nil {
					glog.V(1).Infof("open joystick: %v", err)
				}
				c.deviceTimer = time.After(time.Second)
				continue
			}
			glog.Infof("joystick %d %q opened, %d axes %d buttons",
				js.Index(), js.Name(), js.AxisCount(), js.ButtonCount())
			c.device, c.eventCh = js, make(chan device.Event, 16)
			go c.pollJoystick(js, c.eventCh)
			loopCtl.PostMessage(&eventMsg{connected: true})
			loopCtl.TriggerNext()
		case ev, ok := <-c.eventCh:
			if ok {
				loopCtl.PostMessage(&eventMsg{event: ev})
			} else {
				c.device.Close()
				c.device, c.eventCh = nil, nil
				c.deviceTimer = time.After(time.Second)
				loopCtl.PostMessage(&eventMsg{lost: true})
			}
			loopCtl.TriggerNext()
		}
	}
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		msg, ok := mctx.CurrentMessage().(*eventMsg)
		if !ok {
			return
		}
		mctx.MessageTaken()
		switch {
		case msg.connected:
			c.connected = true
		case msg.lost:
			c.connected = false
			c.failsafe()
		default:
			if ch, us, ok := c.Mapping.Apply(msg.event); ok {
				c.Engine.SetChannel(ch, us)
			}
		}
	}))
	if !c.connected {
		return nil
	}
	now := cc.Time()
	if now.Sub(c.lastSent) < c.SendInterval {
		return nil
	}
	c.lastSent = now
	if err := c.Engine.SendChannels(); err != nil && !link.IsSuppressed(err) {
		return err
	}
	return nil
}

// failsafe stops sending and centers the mapped channels. The receiver
// declares the link down once channels stop.
func (c *Controller) failsafe() {
	glog.Warning("joystick lost")
	for _, ch := range c.Mapping.Axes {
		if ch < 0 {
			ch = -ch
		}
		c.Engine.SetChannel(ch, crsf.RawToMicros(crsf.ChannelRawMid))
	}
}

func (c *Controller) pollJoystick(dev device.Device, ch chan<- device.Event) {
	defer close(ch)
	for {
		ev, err := dev.ReadEvent()
		if err != nil {
			glog.Errorf("joystick read: %v", err)
			return
		}
		if c.Verbose {
			var prefix string
			if ev.IsInit() {
				prefix = "[INIT] "
			}
			switch {
			case ev.IsAxis():
				glog.Infof("%saxis %d: %d", prefix, ev.Number, ev.Value)
			case ev.IsButton():
				glog.Infof("%sbutton %d: %v", prefix, ev.Number, ev.Pressed())
			}
		}
		ch <- ev
	}
}

type eventMsg struct {
	event     device.Event
	connected bool
	lost      bool
}

func (m *eventMsg) NewMessage() fx.Message { return &eventMsg{} }
