package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/telemetry"
)

// Stick channels, 1-based.
const (
	ChRoll     = 1
	ChPitch    = 2
	ChThrottle = 3
	ChYaw      = 4
)

// Flight modes reported by Craft.
const (
	ModeFlying   = "ACRO"
	ModeFailsafe = "!FS!"
)

// Craft flies on received channels and reports its state as telemetry.
type Craft struct {
	Scheduler   *telemetry.Scheduler
	CruiseSpeed float64
	TurnRate    float64
	ClimbRate   float64
	Cells       int
	Capacity    int

	lock     sync.Mutex
	state    CraftState
	sticks   crsf.ChannelSet
	failsafe bool
	last     time.Time
}

// CraftState is the simulated flight state.
type CraftState struct {
	Position s2.LatLng
	Heading  s1.Angle
	Altitude float64 // meters
	Speed    float64 // m/s
	Roll     s1.Angle
	Pitch    s1.Angle
	Used     float64 // mAh
	Current  float64 // A
}

// NewCraft creates a Craft at home.
func NewCraft(s *telemetry.Scheduler, home s2.LatLng) *Craft {
	c := &Craft{
		Scheduler:   s,
		CruiseSpeed: 15,
		TurnRate:    90,
		ClimbRate:   3,
		Cells:       4,
		Capacity:    1500,
		failsafe:    true,
	}
	c.state.Position = home
	for n := range c.sticks {
		c.sticks[n] = 1500
	}
	c.sticks[ChThrottle-1] = 1000
	return c
}

// AddToLoop implements LoopAdder.
func (c *Craft) AddToLoop(loop *fx.Loop) {
	loop.Add(c.Scheduler)
	loop.AddController(fx.PrLvControl, c)
}

// State returns the current flight state.
func (c *Craft) State() CraftState {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// HandleChannels implements link.ChannelsHandler.
func (c *Craft) HandleChannels(ctx context.Context, cs crsf.ChannelSet) {
	c.lock.Lock()
	c.sticks = cs
	c.lock.Unlock()
}

// LinkStateChanged implements link.LinkNotifier. The craft glides with
// throttle cut while the link is down.
func (c *Craft) LinkStateChanged(ctx context.Context, state link.LinkState) {
	c.lock.Lock()
	c.failsafe = state == link.LinkDown
	c.lock.Unlock()
}

// Control implements Controller.
func (c *Craft) Control(cc fx.ControlContext) error {
	now := cc.Time()
	c.Step(now)
	for _, p := range c.Telemetry() {
		c.Scheduler.Set(now, p)
	}
	return nil
}

// stick normalizes a channel to [-1, 1].
func stick(us int) float64 {
	v := float64(us-1500) / 500
	return math.Max(-1, math.Min(1, v))
}

// Step advances the flight to now.
func (c *Craft) Step(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.last.IsZero() {
		c.last = now
		return
	}
	dt := now.Sub(c.last).Seconds()
	c.last = now

	s := &c.state
	throttle, pitch, yaw := 0.0, 0.0, 0.0
	if !c.failsafe {
		throttle = (stick(c.sticks[ChThrottle-1]) + 1) / 2
		pitch = stick(c.sticks[ChPitch-1])
		yaw = stick(c.sticks[ChYaw-1])
		s.Roll = s1.Angle(stick(c.sticks[ChRoll-1]) * math.Pi / 6)
	} else {
		s.Roll = 0
	}
	s.Pitch = s1.Angle(pitch * math.Pi / 6)
	s.Speed = c.CruiseSpeed * throttle
	s.Heading = normalizeHeading(s.Heading + s1.Angle(yaw*c.TurnRate*dt)*s1.Degree)
	if throttle > 0 {
		s.Altitude = math.Max(0, s.Altitude+pitch*c.ClimbRate*dt)
	} else {
		s.Altitude = math.Max(0, s.Altitude-c.ClimbRate*dt)
	}
	s.Position = Destination(s.Position, s.Heading, s.Speed*dt)
	s.Current = 1 + 30*throttle
	s.Used += s.Current * dt / 3.6
}

// Telemetry encodes the current state as payloads.
func (c *Craft) Telemetry() []crsf.Payload {
	c.lock.Lock()
	defer c.lock.Unlock()
	s := c.state

	remaining := 100.0
	if c.Capacity > 0 {
		remaining = math.Max(0, 100*(1-s.Used/float64(c.Capacity)))
	}
	cellVolts := 3.3 + 0.9*remaining/100
	mode := ModeFlying
	if c.failsafe {
		mode = ModeFailsafe
	}
	alt := int(math.Round(s.Altitude)) + 1000
	return []crsf.Payload{
		&crsf.GPS{
			Latitude:    int32(math.Round(s.Position.Lat.Degrees() * 1e7)),
			Longitude:   int32(math.Round(s.Position.Lng.Degrees() * 1e7)),
			GroundSpeed: uint16(math.Round(s.Speed * 36)),
			Heading:     uint16(math.Round(s.Heading.Degrees() * 100)),
			Altitude:    uint16(alt),
			Satellites:  12,
		},
		&crsf.Attitude{
			Pitch: int16(math.Round(s.Pitch.Radians() * 10000)),
			Roll:  int16(math.Round(s.Roll.Radians() * 10000)),
			Yaw:   int16(math.Round(signedHeading(s.Heading).Radians() * 10000)),
		},
		&crsf.Battery{
			Voltage:   uint16(math.Round(cellVolts * float64(c.Cells) * 10)),
			Current:   uint16(math.Round(s.Current * 10)),
			Capacity:  uint32(s.Used),
			Remaining: uint8(math.Round(remaining)),
		},
		&crsf.FlightMode{Mode: mode},
	}
}

// Destination moves from p along the initial course by dist meters on
// a great circle.
func Destination(p s2.LatLng, course s1.Angle, dist float64) s2.LatLng {
	if dist == 0 {
		return p
	}
	d := dist / telemetry.EarthRadius
	lat1, lng1 := p.Lat.Radians(), p.Lng.Radians()
	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(course.Radians()))
	lng2 := lng1 + math.Atan2(
		math.Sin(course.Radians())*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))
	return s2.LatLng{Lat: s1.Angle(lat2), Lng: s1.Angle(lng2)}.Normalized()
}

// normalizeHeading keeps a heading in [0, 2π).
func normalizeHeading(a s1.Angle) s1.Angle {
	r := math.Mod(a.Radians(), 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return s1.Angle(r)
}

// signedHeading maps a heading into (-π, π] for the attitude yaw.
func signedHeading(a s1.Angle) s1.Angle {
	if a > math.Pi {
		return a - 2*math.Pi
	}
	return a
}
