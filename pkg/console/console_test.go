package console

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/transport"
)

func readUntil(t *testing.T, conn net.Conn, want []byte) {
	var got []byte
	buf := make([]byte, 64)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for !bytes.Contains(got, want) {
		n, err := conn.Read(buf)
		require.NoError(t, err, "got %q", got)
		got = append(got, buf[:n]...)
	}
}

func readAll(t *testing.T, p *transport.PipeEnd, n int) []byte {
	var got []byte
	require.Eventually(t, func() bool {
		avail, _ := p.Available()
		for ; avail > 0; avail-- {
			b, _ := p.ReadByte()
			got = append(got, b)
		}
		return len(got) >= n
	}, 2*time.Second, time.Millisecond)
	return got
}

func TestConsolePassthrough(t *testing.T) {
	local, remote := net.Pipe()
	linkEnd, rxEnd := transport.Pipe()
	e := link.NewEngine(link.DefaultConfig(), linkEnd)
	c := New(local, e)
	e.AddHandler(c)

	loop := fx.NewLoop()
	loop.Interval = time.Millisecond
	loop.Add(e, c)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	remote.Write([]byte("#\r"))
	readUntil(t, remote, []byte("# "))

	remote.Write([]byte("serialpassthrough 5 115200\r"))
	readUntil(t, remote, []byte("serialpassthrough 5 115200\r\n"))

	frame, err := crsf.NewFrame(crsf.AddrReceiver, crsf.RebootToBootloader())
	require.NoError(t, err)
	want := frame.Bytes()
	require.Equal(t, want, readAll(t, rxEnd, len(want)))

	require.Eventually(t, func() bool { return c.active.Load() }, time.Second, time.Millisecond)
	var baud int
	require.NoError(t, link.Do(ctx, loop, &link.QueryMsg{Func: func(e *link.Engine) error {
		_, baud = e.Passthrough()
		return nil
	}}))
	require.Equal(t, 115200, baud)

	remote.Write([]byte{0x7f, 0x45})
	require.Equal(t, []byte{0x7f, 0x45}, readAll(t, rxEnd, 2))

	rxEnd.Write([]byte{0x01, 0xfe})
	readUntil(t, remote, []byte{0x01, 0xfe})
}

func TestConsoleLeavesPassthrough(t *testing.T) {
	local, remote := net.Pipe()
	linkEnd, _ := transport.Pipe()
	e := link.NewEngine(link.DefaultConfig(), linkEnd)
	c := New(local, e)
	e.AddHandler(c)

	loop := fx.NewLoop()
	loop.Interval = time.Millisecond
	loop.Add(e, c)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	remote.Write([]byte("serialpassthrough 5 0\n"))
	readUntil(t, remote, []byte("serialpassthrough 5 0\r\n"))
	require.Eventually(t, func() bool { return c.active.Load() }, time.Second, time.Millisecond)

	require.NoError(t, link.Do(ctx, loop, &link.PassthroughMsg{Enable: false}))
	require.Eventually(t, func() bool { return !c.active.Load() }, time.Second, time.Millisecond)

	remote.Write([]byte("serial\n"))
	readUntil(t, remote, []byte("serial 5 64 0 0 0 0\r\n# "))
}

func TestConsoleDropsWhenFull(t *testing.T) {
	c := New(nil, nil)
	for n := 0; n < OutputBufferSize+3; n++ {
		c.HandleOOB(context.Background(), byte(n))
	}
	require.Equal(t, uint64(3), c.Dropped())
}
