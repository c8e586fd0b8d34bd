package transport

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// Transport is implemented by all transports in this package.
type Transport interface {
	io.Writer
	io.Closer
	Available() (int, error)
	ReadByte() (byte, error)
	Reopen(baud int) error
}

// Open opens a transport by address:
//
//	/dev/ttyUSB0           serial device
//	tcp://host:port        TCP stream, e.g. a simulator
//	ws://host:port/path    websocket byte bridge
func Open(addr string, baud int) (Transport, error) {
	if !strings.Contains(addr, "://") {
		return OpenSerial(addr, baud)
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid transport address %q: %v", addr, err)
	}
	switch u.Scheme {
	case "serial":
		return OpenSerial(u.Path, baud)
	case "tcp":
		conn, err := net.Dial("tcp", u.Host)
		if err != nil {
			return nil, err
		}
		return NewStream(conn), nil
	case "ws", "wss":
		return DialWebsocket(addr)
	}
	return nil, fmt.Errorf("unknown transport scheme %q", u.Scheme)
}
