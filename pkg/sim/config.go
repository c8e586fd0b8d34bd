package sim

import (
	"time"

	"github.com/golang/geo/s2"
	"github.com/spf13/pflag"

	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/telemetry"
)

// Config defines the simulated peers.
type Config struct {
	ChannelsInterval  time.Duration
	LinkStatsInterval time.Duration
	SweepPeriod       time.Duration

	HomeLat, HomeLng  float64
	CruiseSpeed       float64 // m/s at full throttle
	TurnRate          float64 // degrees/s at full yaw
	ClimbRate         float64 // m/s at full pitch
	Cells             int
	Capacity          int // mAh
	TelemetryInterval time.Duration
}

// Defaults
const (
	DefaultChannelsInterval  = 20 * time.Millisecond
	DefaultLinkStatsInterval = 200 * time.Millisecond
	DefaultSweepPeriod       = 8 * time.Second
)

var defaultConfig = Config{
	ChannelsInterval:  DefaultChannelsInterval,
	LinkStatsInterval: DefaultLinkStatsInterval,
	SweepPeriod:       DefaultSweepPeriod,
	HomeLat:           47.397742,
	HomeLng:           8.545594,
	CruiseSpeed:       15,
	TurnRate:          90,
	ClimbRate:         3,
	Cells:             4,
	Capacity:          1500,
	TelemetryInterval: telemetry.DefaultInterval,
}

// SetupFlags sets command line flags.
func SetupFlags(fs *pflag.FlagSet) {
	c := &defaultConfig
	fs.DurationVar(&c.ChannelsInterval, "channels-interval", c.ChannelsInterval, "Interval of channels frames from the handset.")
	fs.DurationVar(&c.SweepPeriod, "sweep", c.SweepPeriod, "Period of the stick sweep.")
	fs.Float64Var(&c.HomeLat, "home-lat", c.HomeLat, "Latitude of the craft at start.")
	fs.Float64Var(&c.HomeLng, "home-lng", c.HomeLng, "Longitude of the craft at start.")
	fs.Float64Var(&c.CruiseSpeed, "cruise-speed", c.CruiseSpeed, "Ground speed (m/s) at full throttle.")
	fs.IntVar(&c.Cells, "cells", c.Cells, "Battery cells.")
	fs.IntVar(&c.Capacity, "capacity", c.Capacity, "Battery capacity (mAh).")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewHandset creates a Handset on e.
func (c *Config) NewHandset(e *link.Engine) *Handset {
	h := NewHandset(e)
	h.ChannelsInterval = c.ChannelsInterval
	h.LinkStatsInterval = c.LinkStatsInterval
	h.SweepPeriod = c.SweepPeriod
	return h
}

// NewCraft creates a Craft reporting through a scheduler on e.
func (c *Config) NewCraft(e *link.Engine) *Craft {
	craft := NewCraft(telemetry.NewScheduler(e, c.TelemetryInterval), s2.LatLngFromDegrees(c.HomeLat, c.HomeLng))
	craft.CruiseSpeed = c.CruiseSpeed
	craft.TurnRate = c.TurnRate
	craft.ClimbRate = c.ClimbRate
	craft.Cells = c.Cells
	craft.Capacity = c.Capacity
	e.AddHandler(craft)
	return craft
}
