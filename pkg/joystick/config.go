package joystick

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/robotalks/crsf.go/pkg/link"
)

// Config defines the configurations for the controller.
type Config struct {
	DeviceIndex  int
	Mapping      string
	SendInterval time.Duration
	Verbose      bool
}

var defaultConfig = Config{
	DeviceIndex:  -1,
	SendInterval: 20 * time.Millisecond,
}

// SetupFlags sets command line flags.
func SetupFlags(fs *pflag.FlagSet) {
	fs.IntVar(&defaultConfig.DeviceIndex, "js", defaultConfig.DeviceIndex, "Joystick index, -1 for auto detection.")
	fs.StringVar(&defaultConfig.Mapping, "js-map", defaultConfig.Mapping, "Joystick mapping like a0:4,a1:-3,b0:5.")
	fs.DurationVar(&defaultConfig.SendInterval, "js-interval", defaultConfig.SendInterval, "Interval of channels frames.")
	fs.BoolVar(&defaultConfig.Verbose, "js-verbose", defaultConfig.Verbose, "Log joystick events.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates a controller using the config.
func (c *Config) NewController(e *link.Engine) (*Controller, error) {
	ctl := NewController(e)
	ctl.DeviceIndex = c.DeviceIndex
	ctl.SendInterval = c.SendInterval
	ctl.Verbose = c.Verbose
	if c.Mapping != "" {
		m, err := ParseMapping(c.Mapping)
		if err != nil {
			return nil, err
		}
		ctl.Mapping = m
	}
	return ctl, nil
}
