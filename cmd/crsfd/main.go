package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/pflag"

	"github.com/robotalks/crsf.go/pkg/capture"
	"github.com/robotalks/crsf.go/pkg/config"
	"github.com/robotalks/crsf.go/pkg/console"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/indicator"
	"github.com/robotalks/crsf.go/pkg/telemetry"
	"github.com/robotalks/crsf.go/pkg/telemetry/modbus"
	"github.com/robotalks/crsf.go/pkg/telemetry/mqtt"
)

var configFile string

func init() {
	pflag.StringVarP(&configFile, "config", "c", configFile, "YAML config file.")
	config.SetupFlags(pflag.CommandLine)
	config.SetupServiceFlags(pflag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
}

func main() {
	pflag.Parse()
	defer glog.Flush()

	conf := config.MustLoad(configFile)
	if err := conf.Validate(); err != nil {
		log.Fatalln(err)
	}
	e, t := conf.MustNewEngine()
	defer t.Close()

	loop := fx.NewLoop().Add(e)

	sched := telemetry.NewScheduler(e, conf.TelemetryInterval)
	loop.Add(sched)

	outs, err := conf.NewOutputs()
	if err != nil {
		log.Fatalln(err)
	}
	e.AddHandler(outs)

	home := &telemetry.HomeTracker{}
	e.AddHandler(home)

	if conf.Console.Enable {
		pty, err := console.OpenPTY(e, conf.Console.Symlink)
		if err != nil {
			log.Fatalln(err)
		}
		defer pty.Close()
		e.AddHandler(pty.Console)
		loop.Add(pty.Console)
	}

	if conf.Capture.Dir != "" {
		if err := os.MkdirAll(conf.Capture.Dir, 0755); err != nil {
			log.Fatalln(err)
		}
		c := capture.New(conf.Capture.Dir)
		c.FilePattern = conf.Capture.Pattern
		defer c.Close()
		e.AddHandler(c)
	}

	if conf.Modbus.Endpoint != "" {
		m, err := modbus.Dial(conf.ModbusConfig(), e)
		if err != nil {
			log.Fatalf("modbus %s: %v", conf.Modbus.Endpoint, err)
		}
		m.Outputs = outs
		if d, ok := conf.VoltageDivider(); ok {
			m.Battery = telemetry.NewBatteryMonitor(sched, d)
		}
		loop.Add(m)
	}

	if conf.LED.Chip != "" {
		led, err := indicator.OpenLED(conf.LED.Chip, conf.LED.Offset, conf.LED.ActiveLow, e)
		if err != nil {
			log.Fatalln(err)
		}
		defer led.Close()
		e.AddHandler(led)
		loop.Add(led)
	}

	if conf.MQTTURL != "" {
		q, err := mqtt.Dial(conf.MQTTURL, conf.LinkID)
		if err != nil {
			log.Fatalln(err)
		}
		bridge := mqtt.NewBridge(q, conf.LinkID)
		bridge.Home = home
		bridge.Meta = map[string]string{
			"device": conf.Device,
			"role":   conf.Role,
		}
		q.OnConnect = func(*mqtt.Queue) { bridge.Connected() }
		e.AddHandler(bridge)
		loop.AddRunnable(q, bridge)
	}

	runner := fx.NewRunnerWith(context.Background()).HandleSignals()
	runner.Go(fx.NamedRun("loop", loop))
	if err := runner.Wait(); err != nil {
		glog.Error(err)
		glog.Flush()
		os.Exit(1)
	}
}
