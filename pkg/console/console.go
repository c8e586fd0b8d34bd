package console

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/golang/glog"

	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
)

// OutputBufferSize is the number of bytes queued towards the console
// before further out-of-band bytes are dropped.
const OutputBufferSize = 4096

// Console bridges a byte stream, usually a pseudo terminal, to an engine.
// It runs a CLI until passthrough is started, then forwards raw bytes.
type Console struct {
	Engine *link.Engine

	rw     io.ReadWriteCloser
	cli    CLI
	out    chan byte
	active atomic.Bool

	dropped atomic.Uint64
}

// New creates a Console on rw.
func New(rw io.ReadWriteCloser, e *link.Engine) *Console {
	return &Console{
		Engine: e,
		rw:     rw,
		out:    make(chan byte, OutputBufferSize),
	}
}

// Dropped returns the number of out-of-band bytes dropped because the
// console didn't keep up.
func (c *Console) Dropped() uint64 {
	return c.dropped.Load()
}

// AddToLoop implements LoopAdder.
func (c *Console) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvOutput, c)
}

// Control implements Controller. It tracks the passthrough state so the
// CLI comes back when the engine leaves passthrough.
func (c *Console) Control(cc fx.ControlContext) error {
	active, _ := c.Engine.Passthrough()
	if c.active.Swap(active) != active {
		glog.V(2).Infof("console passthrough=%v", active)
	}
	return nil
}

// HandleOOB implements link.OOBHandler.
func (c *Console) HandleOOB(ctx context.Context, b byte) {
	select {
	case c.out <- b:
	default:
		c.dropped.Add(1)
	}
}

// Run implements Runnable.
func (c *Console) Run(ctx context.Context) error {
	lc := fx.LoopCtlFrom(ctx)
	go c.writeLoop(ctx)
	return fx.RunWithContextCloser(ctx, c.rw, func() error {
		buf := make([]byte, 256)
		for {
			n, err := c.rw.Read(buf)
			if n > 0 {
				c.input(ctx, lc, buf[:n])
			}
			if err != nil {
				return err
			}
		}
	})
}

func (c *Console) input(ctx context.Context, lc fx.LoopControl, data []byte) {
	if !c.active.Load() {
		reply, cmd, rest := c.cli.Input(data)
		c.reply(ctx, reply)
		if cmd == nil {
			return
		}
		glog.Infof("console requests passthrough at %d", cmd.Baud)
		if err := link.Do(ctx, lc, &link.PassthroughMsg{Enable: true, Baud: cmd.Baud}); err != nil {
			glog.Warningf("console passthrough: %v", err)
			return
		}
		c.active.Store(true)
		data = rest
	}
	if len(data) > 0 {
		link.Post(lc, &link.WriteMsg{Data: append([]byte(nil), data...)})
	}
}

func (c *Console) reply(ctx context.Context, data []byte) {
	for _, b := range data {
		select {
		case c.out <- b:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Console) writeLoop(ctx context.Context) {
	buf := make([]byte, 0, 256)
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-c.out:
			buf = append(buf[:0], b)
		}
	drain:
		for len(buf) < cap(buf) {
			select {
			case b := <-c.out:
				buf = append(buf, b)
			default:
				break drain
			}
		}
		if _, err := c.rw.Write(buf); err != nil {
			glog.Warningf("console write: %v", err)
		}
	}
}
