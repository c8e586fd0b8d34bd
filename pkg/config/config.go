// Package config provides the common options of the link binaries.
//
// Defaults are overridden by environment variables, then command line
// flags, then the YAML file if one is loaded.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/crsf.go/pkg/crsf"
	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/output"
	"github.com/robotalks/crsf.go/pkg/telemetry"
	"github.com/robotalks/crsf.go/pkg/telemetry/modbus"
	"github.com/robotalks/crsf.go/pkg/transport"
)

// Config defines all options.
type Config struct {
	// Device is a serial device or a tcp:// or ws:// URL.
	Device          string        `yaml:"device"`
	Baud            int           `yaml:"baud"`
	Role            string        `yaml:"role"`
	Address         string        `yaml:"address"`
	LinkID          string        `yaml:"link_id"`
	PacketTimeout   time.Duration `yaml:"packet_timeout"`
	FailsafeTimeout time.Duration `yaml:"failsafe_timeout"`
	SendGuard       time.Duration `yaml:"send_guard"`
	PassthroughIdle time.Duration `yaml:"passthrough_idle"`
	AddressFilter   bool          `yaml:"address_filter"`

	// MQTTURL enables the MQTT bridge, e.g. mqtt://host:1883/crsf/
	MQTTURL string `yaml:"mqtt_url"`

	TelemetryInterval time.Duration `yaml:"telemetry_interval"`

	Console ConsoleConfig `yaml:"console"`
	Capture CaptureConfig `yaml:"capture"`
	Modbus  ModbusConfig  `yaml:"modbus"`
	LED     LEDConfig     `yaml:"led"`
	Outputs OutputsConfig `yaml:"outputs"`
}

// ConsoleConfig defines the pseudo terminal console.
type ConsoleConfig struct {
	Enable  bool   `yaml:"enable"`
	Symlink string `yaml:"symlink"`
}

// CaptureConfig defines out-of-band byte capturing, disabled when Dir is
// empty.
type CaptureConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
}

// ModbusConfig defines the Modbus mirror, disabled when Endpoint is empty.
type ModbusConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	SlaveID     uint8         `yaml:"slave_id"`
	Timeout     time.Duration `yaml:"timeout"`
	BaseAddress uint16        `yaml:"base_address"`
	Interval    time.Duration `yaml:"interval"`
	// VbatAddress is sampled when VbatR2 is not zero.
	VbatAddress uint16 `yaml:"vbat_address"`
	VbatR1      int    `yaml:"vbat_r1"`
	VbatR2      int    `yaml:"vbat_r2"`
	VbatScale   int    `yaml:"vbat_scale"`
}

// LEDConfig defines the link LED, disabled when Chip is empty.
type LEDConfig struct {
	Chip      string `yaml:"chip"`
	Offset    int    `yaml:"offset"`
	ActiveLow bool   `yaml:"active_low"`
}

// OutputsConfig defines the servo output map.
type OutputsConfig struct {
	Map      string `yaml:"map"`
	Failsafe string `yaml:"failsafe"`
}

var defaultConfig = Config{
	Device:            "/dev/ttyUSB0",
	Baud:              link.DefaultBaud,
	Role:              link.RoleReceiver.String(),
	Address:           crsf.AddrFlightController.String(),
	PacketTimeout:     link.DefaultPacketTimeout,
	FailsafeTimeout:   link.DefaultFailsafeTimeout,
	PassthroughIdle:   5 * time.Second,
	TelemetryInterval: telemetry.DefaultInterval,
	Console: ConsoleConfig{
		Symlink: "/tmp/crsf",
	},
	Capture: CaptureConfig{
		Pattern: "crsf-%Y%m%d.log",
	},
	Modbus: ModbusConfig{
		SlaveID:  1,
		Timeout:  time.Second,
		Interval: modbus.DefaultInterval,
		VbatR1:   820,
		VbatR2:   120,
	},
	Outputs: OutputsConfig{
		Map:      "1,2,3,4,6,7,8,12",
		Failsafe: "1500,1500,988,1500,hold,hold,hold,nopulses",
	},
}

func init() {
	if val := os.Getenv("CRSF_DEVICE"); val != "" {
		defaultConfig.Device = val
	}
	if val := os.Getenv("CRSF_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Baud = baud
		}
	}
	if val := os.Getenv("CRSF_ROLE"); val != "" {
		defaultConfig.Role = val
	}
	if val := os.Getenv("CRSF_MQTT_URL"); val != "" {
		defaultConfig.MQTTURL = val
	}
	if val := os.Getenv("CRSF_LINK_ID"); val != "" {
		defaultConfig.LinkID = val
	} else {
		defaultConfig.LinkID = MachineID()
	}
}

// MachineID retrieves the unique ID identifying the machine, or the host
// name when it's not available.
func MachineID() string {
	id, err := machineid.ID()
	if err == nil && id != "" {
		return id
	}
	if host, _ := os.Hostname(); host != "" {
		return host
	}
	return "crsf"
}

// SetupFlags registers the link flags on fs.
func SetupFlags(fs *pflag.FlagSet) {
	c := &defaultConfig
	fs.StringVarP(&c.Device, "device", "d", c.Device, "Serial device, tcp:// or ws:// URL.")
	fs.IntVarP(&c.Baud, "baud", "b", c.Baud, "Protocol baud rate.")
	fs.StringVar(&c.Role, "role", c.Role, "Peer role: rx or tx.")
	fs.StringVar(&c.Address, "address", c.Address, "Source address of sent frames.")
	fs.StringVar(&c.LinkID, "id", c.LinkID, "Link ID used in MQTT topics.")
	fs.DurationVar(&c.FailsafeTimeout, "failsafe", c.FailsafeTimeout, "Link down timeout without channels.")
	fs.DurationVar(&c.SendGuard, "send-guard", c.SendGuard, "Hold sends after received bytes on half-duplex lines.")
	fs.DurationVar(&c.PassthroughIdle, "passthrough-idle", c.PassthroughIdle, "Leave passthrough after idle, 0 to never.")
	fs.BoolVar(&c.AddressFilter, "address-filter", c.AddressFilter, "Only accept frames to the flight controller.")
	fs.StringVar(&c.MQTTURL, "mqtt", c.MQTTURL, "MQTT broker URL.")
}

// SetupServiceFlags registers flags of the optional services on fs.
func SetupServiceFlags(fs *pflag.FlagSet) {
	c := &defaultConfig
	fs.BoolVar(&c.Console.Enable, "console", c.Console.Enable, "Expose a pseudo terminal console.")
	fs.StringVar(&c.Console.Symlink, "console-link", c.Console.Symlink, "Symlink to the console terminal.")
	fs.StringVar(&c.Capture.Dir, "capture", c.Capture.Dir, "Directory to capture out-of-band bytes.")
	fs.StringVar(&c.Modbus.Endpoint, "modbus", c.Modbus.Endpoint, "Modbus TCP endpoint to mirror the link.")
	fs.StringVar(&c.LED.Chip, "led-chip", c.LED.Chip, "GPIO chip of the link LED.")
	fs.IntVar(&c.LED.Offset, "led-line", c.LED.Offset, "GPIO line of the link LED.")
	fs.StringVar(&c.Outputs.Map, "outputs", c.Outputs.Map, "Channels of servo outputs, negative inverts.")
	fs.StringVar(&c.Outputs.Failsafe, "outputs-failsafe", c.Outputs.Failsafe, "Failsafe of servo outputs.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load reads a YAML file over the default config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	conf := NewConfig()
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parse %s: %v", path, err)
	}
	return conf, nil
}

// MustLoad loads the config file and fails on error. Empty path returns
// the default config.
func MustLoad(path string) *Config {
	if path == "" {
		return Default()
	}
	conf, err := Load(path)
	if err == nil {
		err = conf.Validate()
	}
	if err != nil {
		log.Fatalln(err)
	}
	return conf
}

// Validate checks the options.
func (c *Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device is required")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if _, err := link.ParseRole(c.Role); err != nil {
		return err
	}
	if _, err := crsf.ParseAddress(c.Address); err != nil {
		return err
	}
	for name, d := range map[string]time.Duration{
		"packet_timeout":   c.PacketTimeout,
		"failsafe_timeout": c.FailsafeTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.SendGuard < 0 || c.PassthroughIdle < 0 {
		return fmt.Errorf("negative timeout")
	}
	if _, err := c.NewOutputs(); err != nil {
		return err
	}
	if c.Modbus.Endpoint != "" && c.Modbus.VbatR2 < 0 {
		return fmt.Errorf("invalid vbat divider")
	}
	return nil
}

// EngineConfig converts to the engine config.
func (c *Config) EngineConfig() (link.Config, error) {
	conf := link.DefaultConfig()
	role, err := link.ParseRole(c.Role)
	if err != nil {
		return conf, err
	}
	addr, err := crsf.ParseAddress(c.Address)
	if err != nil {
		return conf, err
	}
	conf.Role, conf.Address = role, addr
	conf.Baud = c.Baud
	conf.PacketTimeout = c.PacketTimeout
	conf.FailsafeTimeout = c.FailsafeTimeout
	conf.SendGuard = c.SendGuard
	conf.PassthroughIdle = c.PassthroughIdle
	conf.AddressFilter = c.AddressFilter
	return conf, nil
}

// NewEngine opens the transport and creates the engine.
func (c *Config) NewEngine() (*link.Engine, transport.Transport, error) {
	conf, err := c.EngineConfig()
	if err != nil {
		return nil, nil, err
	}
	t, err := transport.Open(c.Device, c.Baud)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %v", c.Device, err)
	}
	glog.Infof("link %s on %s at %d as %s", c.LinkID, c.Device, c.Baud, conf.Role)
	return link.NewEngine(conf, t), t, nil
}

// MustNewEngine creates the engine and fails on error.
func (c *Config) MustNewEngine() (*link.Engine, transport.Transport) {
	e, t, err := c.NewEngine()
	if err != nil {
		log.Fatalln(err)
	}
	return e, t
}

// NewOutputs creates the servo outputs.
func (c *Config) NewOutputs() (*output.Outputs, error) {
	m, err := output.ParseMap(c.Outputs.Map)
	if err != nil {
		return nil, fmt.Errorf("outputs: %v", err)
	}
	fs, err := output.ParseFailsafe(c.Outputs.Failsafe)
	if err != nil {
		return nil, fmt.Errorf("outputs failsafe: %v", err)
	}
	return output.New(m, fs), nil
}

// ModbusConfig converts to the mirror config.
func (c *Config) ModbusConfig() modbus.Config {
	return modbus.Config{
		Endpoint:    c.Modbus.Endpoint,
		SlaveID:     c.Modbus.SlaveID,
		Timeout:     c.Modbus.Timeout,
		BaseAddress: c.Modbus.BaseAddress,
		VbatAddress: c.Modbus.VbatAddress,
		Interval:    c.Modbus.Interval,
	}
}

// VoltageDivider returns the battery divider, false if not sampled.
func (c *Config) VoltageDivider() (telemetry.VoltageDivider, bool) {
	d := telemetry.VoltageDivider{R1: c.Modbus.VbatR1, R2: c.Modbus.VbatR2, Scale: c.Modbus.VbatScale}
	return d, d.R2 > 0
}
