package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"

	"github.com/golang/glog"
	"github.com/spf13/pflag"

	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/sim"
	"github.com/robotalks/crsf.go/pkg/transport"
)

var (
	peer     = sim.PeerHandset
	tcpAddr  = ":5761"
	httpAddr = ""
)

func init() {
	pflag.StringVarP(&peer, "peer", "p", peer, "Simulated peer: handset or craft.")
	pflag.StringVar(&tcpAddr, "tcp", tcpAddr, "TCP listen address, empty to disable.")
	pflag.StringVar(&httpAddr, "ws", httpAddr, "Websocket listen address serving /link, empty to disable.")
	sim.SetupFlags(pflag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
}

func serveTCP(ctx context.Context) error {
	ln, err := net.Listen("tcp", tcpAddr)
	if err != nil {
		return err
	}
	glog.Infof("%s listening on tcp %s", peer, ln.Addr())
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			glog.Infof("accepted %s", conn.RemoteAddr())
			go func() {
				s := transport.NewStream(conn)
				defer s.Close()
				sim.Default().Session(ctx, peer, s)
			}()
		}
	})
}

func serveWebsocket(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/link", transport.WebsocketHandler(func(s *transport.Stream) {
		defer s.Close()
		sim.Default().Session(ctx, peer, s)
	}))
	server := &http.Server{Addr: httpAddr, Handler: mux}
	glog.Infof("%s listening on ws://%s/link", peer, httpAddr)
	return fx.RunWithContextCloser(ctx, server, server.ListenAndServe)
}

func main() {
	pflag.Parse()
	defer glog.Flush()
	if peer != sim.PeerHandset && peer != sim.PeerCraft {
		log.Fatalf("unknown peer %q", peer)
	}

	runner := fx.NewRunner().HandleSignals()
	if tcpAddr != "" {
		runner.Go(fx.NamedRun("tcp", fx.RunFunc(serveTCP)))
	}
	if httpAddr != "" {
		runner.Go(fx.NamedRun("ws", fx.RunFunc(serveWebsocket)))
	}
	if len(runner.Runners) == 0 {
		log.Fatalln("nothing to serve")
	}
	if err := runner.Wait(); err != nil {
		glog.Error(err)
	}
}
