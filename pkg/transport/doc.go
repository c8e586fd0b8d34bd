// Package transport provides byte channels the link engine runs on.
//
// Serial opens a tty in raw mode; Stream adapts any io.ReadWriteCloser
// (TCP, websocket) by reading in the background; Pipe connects two
// in-memory ends.
package transport
