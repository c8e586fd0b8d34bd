package link

import (
	"context"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
)

// SendMsg asks the engine to send a payload.
type SendMsg struct {
	Address crsf.Address
	Payload crsf.Payload
	// Unchecked bypasses link state checks.
	Unchecked bool

	result
}

// NewMessage implements Message.
func (m *SendMsg) NewMessage() fx.Message { return &SendMsg{} }

// PassthroughMsg asks the engine to enter or leave passthrough mode.
type PassthroughMsg struct {
	Enable bool
	Baud   int

	result
}

// NewMessage implements Message.
func (m *PassthroughMsg) NewMessage() fx.Message { return &PassthroughMsg{} }

// WriteMsg carries raw bytes to write in passthrough mode.
type WriteMsg struct {
	Data []byte

	result
}

// NewMessage implements Message.
func (m *WriteMsg) NewMessage() fx.Message { return &WriteMsg{} }

// QueryMsg runs Func against the engine inside the loop.
type QueryMsg struct {
	Func func(*Engine) error

	result
}

// NewMessage implements Message.
func (m *QueryMsg) NewMessage() fx.Message { return &QueryMsg{} }

// Request is a message with a completion result.
type Request interface {
	fx.Message
	ResultChan() <-chan error
}

type result struct {
	ch chan error
}

func (r *result) ResultChan() <-chan error {
	if r.ch == nil {
		r.ch = make(chan error, 1)
	}
	return r.ch
}

func (r *result) done(err error) {
	if r.ch != nil {
		r.ch <- err
	}
}

// Post posts a message into the loop and wakes it up.
func Post(lc fx.LoopControl, msg fx.Message) {
	lc.PostMessage(msg)
	lc.TriggerNext()
}

// Do posts a request and waits for its result.
func Do(ctx context.Context, lc fx.LoopControl, req Request) error {
	ch := req.ResultChan()
	Post(lc, req)
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddToLoop implements LoopAdder.
func (e *Engine) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvSense, e)
}

// Control implements Controller.
func (e *Engine) Control(cc fx.ControlContext) error {
	ctx := cc.Context()
	e.now = cc.Time()
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch msg := mctx.CurrentMessage().(type) {
		case *SendMsg:
			mctx.MessageTaken()
			msg.done(e.handleSend(msg))
		case *PassthroughMsg:
			mctx.MessageTaken()
			if msg.Enable {
				msg.done(e.EnterPassthrough(msg.Baud))
			} else {
				msg.done(e.SetPassthrough(false, 0))
			}
		case *WriteMsg:
			mctx.MessageTaken()
			_, err := e.WritePassthrough(msg.Data)
			msg.done(err)
		case *QueryMsg:
			mctx.MessageTaken()
			msg.done(msg.Func(e))
		}
	}))
	return e.Pump(ctx, cc.Time())
}

func (e *Engine) handleSend(msg *SendMsg) error {
	if !msg.Unchecked {
		return e.SendPayload(msg.Address, msg.Payload)
	}
	data, err := msg.Payload.MarshalBinary()
	if err != nil {
		return err
	}
	return e.counted(e.sender.SendUnchecked(msg.Address, msg.Payload.FrameType(), data))
}
