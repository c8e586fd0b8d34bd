package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/pflag"

	"github.com/robotalks/crsf.go/pkg/config"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/joystick"
	"github.com/robotalks/crsf.go/pkg/telemetry"
	"github.com/robotalks/crsf.go/pkg/telemetry/mqtt"
)

func init() {
	if os.Getenv("CRSF_ROLE") == "" {
		config.Default().Role = "transmitter"
	}
	config.SetupFlags(pflag.CommandLine)
	joystick.SetupFlags(pflag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
}

func main() {
	pflag.Parse()
	defer glog.Flush()

	conf := config.NewConfig()
	if err := conf.Validate(); err != nil {
		log.Fatalln(err)
	}
	e, t := conf.MustNewEngine()
	defer t.Close()

	ctl, err := joystick.NewConfig().NewController(e)
	if err != nil {
		log.Fatalln(err)
	}
	loop := fx.NewLoop().Add(e, ctl)

	if conf.MQTTURL != "" {
		q, err := mqtt.Dial(conf.MQTTURL, conf.LinkID)
		if err != nil {
			log.Fatalln(err)
		}
		bridge := mqtt.NewBridge(q, conf.LinkID)
		bridge.Home = &telemetry.HomeTracker{MinSatellites: 4}
		bridge.Meta = map[string]string{"device": conf.Device, "role": conf.Role}
		q.OnConnect = func(*mqtt.Queue) { bridge.Connected() }
		e.AddHandler(bridge)
		loop.AddRunnable(q, bridge)
	}

	runner := fx.NewRunner().HandleSignals()
	runner.Go(fx.NamedRun("loop", loop))
	if err := runner.Wait(); err != nil {
		glog.Error(err)
		glog.Flush()
		os.Exit(1)
	}
}
