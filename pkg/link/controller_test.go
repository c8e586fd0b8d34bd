package link

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
)

func TestEngineControl(t *testing.T) {
	tr := &testTransport{}
	conf := DefaultConfig()
	conf.Role = RoleTransmitter
	e := NewEngine(conf, tr)
	now := time.Unix(1000, 0)
	loop := fx.NewLoop()
	loop.Now = func() time.Time { return now }
	loop.Add(e)

	send := &SendMsg{Address: crsf.AddrFlightController, Payload: &crsf.Vario{VerticalSpeed: -200}}
	sendCh := send.ResultChan()
	pt := &PassthroughMsg{Enable: true, Baud: 115200}
	ptCh := pt.ResultChan()
	Post(loop, send)
	Post(loop, pt)
	tr.in.Write(batteryFrame)
	loop.RunIteration(context.Background())

	require.NoError(t, <-sendCh)
	require.NoError(t, <-ptCh)
	f, err := crsf.ParseFrame(tr.out.Bytes())
	require.NoError(t, err)
	require.Equal(t, crsf.TypeVario, f.Type)
	active, baud := e.Passthrough()
	require.True(t, active)
	require.Equal(t, 115200, baud)
	require.Equal(t, uint64(len(batteryFrame)), e.Stats().PassthroughIn)

	var state LinkState
	query := &QueryMsg{Func: func(e *Engine) error {
		state = e.LinkState()
		return nil
	}}
	queryCh := query.ResultChan()
	Post(loop, query)
	Post(loop, &WriteMsg{Data: []byte("abc")})
	loop.RunIteration(context.Background())
	require.NoError(t, <-queryCh)
	require.Equal(t, LinkDown, state)
	require.Equal(t, uint64(3), e.Stats().PassthroughOut)
}

func TestDo(t *testing.T) {
	e := NewEngine(DefaultConfig(), &testTransport{})
	loop := fx.NewLoop()
	loop.Add(e)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	err := Do(ctx, loop, &SendMsg{Address: crsf.AddrFlightController, Payload: &crsf.Vario{}})
	require.Equal(t, ErrNotReady, err)
	err = Do(ctx, loop, &SendMsg{Address: crsf.AddrReceiver, Payload: crsf.RebootToBootloader(), Unchecked: true})
	require.NoError(t, err)
}
