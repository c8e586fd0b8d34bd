package indicator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
	"github.com/robotalks/crsf.go/pkg/transport"
)

type testPin struct {
	values []int
	closed bool
}

func (p *testPin) SetValue(v int) error {
	p.values = append(p.values, v)
	return nil
}

func (p *testPin) Close() error {
	p.closed = true
	return nil
}

func TestLEDLinkState(t *testing.T) {
	var pin testPin
	l := &LED{Pin: &pin}
	ctx := context.Background()
	l.LinkStateChanged(ctx, link.LinkUp)
	l.LinkStateChanged(ctx, link.LinkUp)
	l.LinkStateChanged(ctx, link.LinkDown)
	require.Equal(t, []int{1, 0}, pin.values)

	require.NoError(t, l.Close())
	require.True(t, pin.closed)
}

func TestLEDPassthroughBlink(t *testing.T) {
	var pin testPin
	linkEnd, _ := transport.Pipe()
	e := link.NewEngine(link.DefaultConfig(), linkEnd)
	l := &LED{Pin: &pin, Engine: e}
	e.AddHandler(l)

	now := time.Unix(1000, 0)
	loop := fx.NewLoop()
	loop.Now = func() time.Time { return now }
	loop.Add(e, l)
	ctx := context.Background()

	loop.RunIteration(ctx)
	require.Empty(t, pin.values)

	require.NoError(t, e.SetPassthrough(true, 0))
	for n := 0; n < 4; n++ {
		loop.RunIteration(ctx)
		now = now.Add(50 * time.Millisecond)
	}
	// toggled at 0ms and 100ms
	require.Equal(t, []int{1, 0}, pin.values)

	require.NoError(t, e.SetPassthrough(false, 0))
	now = now.Add(time.Millisecond)
	loop.RunIteration(ctx)
	require.Equal(t, []int{1, 0}, pin.values)
	require.Equal(t, 0, l.Value())
}
