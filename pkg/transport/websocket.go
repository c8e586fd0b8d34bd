package transport

import (
	"net/url"

	"golang.org/x/net/websocket"
)

// DialWebsocket connects a websocket byte bridge. Each binary message
// carries raw link bytes.
func DialWebsocket(addr string) (*Stream, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, err
	}
	origin := "http://" + u.Host
	if u.Scheme == "wss" {
		origin = "https://" + u.Host
	}
	conn, err := websocket.Dial(addr, "", origin)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return NewStream(conn), nil
}

// WebsocketHandler serves a transport over websocket; every connection
// is handed to fn as a Stream.
func WebsocketHandler(fn func(*Stream)) websocket.Handler {
	return func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		s := NewStream(conn)
		fn(s)
	}
}
