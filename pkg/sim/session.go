package sim

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/transport"
)

// Simulated peers.
const (
	PeerHandset = "handset"
	PeerCraft   = "craft"
)

// Session simulates peer on t until ctx is canceled or t fails.
func (c *Config) Session(ctx context.Context, peer string, t transport.Transport) error {
	conf := link.DefaultConfig()
	switch peer {
	case PeerHandset:
		conf.Role = link.RoleTransmitter
	case PeerCraft:
	default:
		return fmt.Errorf("unknown peer %q", peer)
	}
	e := link.NewEngine(conf, t)
	var adder fx.LoopAdder
	if peer == PeerCraft {
		adder = c.NewCraft(e)
	} else {
		adder = c.NewHandset(e)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var err error
	loop := fx.NewLoop().Add(e, adder)
	loop.AddController(fx.PrLvIdle, fx.ControlFunc(func(cc fx.ControlContext) error {
		if _, err = t.Available(); err != nil {
			cancel()
		}
		return nil
	}))
	glog.Infof("%s session started", peer)
	loop.Run(ctx)
	glog.Infof("%s session stopped: %v", peer, err)
	return err
}
