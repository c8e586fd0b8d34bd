package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crsf.go/pkg/crsf"
	fx "github.com/robotalks/crsf.go/pkg/framework"
	"github.com/robotalks/crsf.go/pkg/link"
)

type testSender struct {
	sent []crsf.Payload
	err  error
}

func (s *testSender) SendTelemetry(p crsf.Payload) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, p)
	return nil
}

func (s *testSender) types() (types []crsf.FrameType) {
	for _, p := range s.sent {
		types = append(types, p.FrameType())
	}
	return
}

func TestSchedulerRoundRobin(t *testing.T) {
	t0 := time.Unix(1000, 0)
	var sender testSender
	s := NewScheduler(&sender, 200*time.Millisecond)
	s.Set(t0, &crsf.Battery{Voltage: 123})
	s.Set(t0, &crsf.Cells{Values: []uint16{3500}})
	s.Set(t0, &crsf.Temperature{Values: []int16{250}})

	for n := 0; n < 5; n++ {
		now := t0.Add(time.Duration(n) * 100 * time.Millisecond)
		require.NoError(t, s.Poll(now, &sender))
	}
	// t0, t0+200ms and t0+400ms
	require.Equal(t, []crsf.FrameType{crsf.TypeBattery, crsf.TypeCells, crsf.TypeTemperature}, sender.types())

	require.NoError(t, s.Poll(t0.Add(600*time.Millisecond), &sender))
	require.Equal(t, crsf.TypeBattery, sender.sent[3].FrameType())
}

func TestSchedulerLatestWins(t *testing.T) {
	t0 := time.Unix(1000, 0)
	var sender testSender
	s := NewScheduler(&sender, time.Millisecond)
	s.Set(t0, &crsf.Battery{Voltage: 100})
	s.Set(t0, &crsf.Battery{Voltage: 101})
	require.Equal(t, 1, s.Len())
	require.NoError(t, s.Poll(t0, &sender))
	require.Equal(t, []crsf.Payload{&crsf.Battery{Voltage: 101}}, sender.sent)
}

func TestSchedulerHoldsSuppressed(t *testing.T) {
	t0 := time.Unix(1000, 0)
	sender := testSender{err: link.ErrWouldBlock}
	s := NewScheduler(&sender, time.Second)
	s.Set(t0, &crsf.Battery{Voltage: 100})
	s.Set(t0, &crsf.Vario{VerticalSpeed: 5})
	require.NoError(t, s.Poll(t0, &sender))

	sender.err = nil
	require.NoError(t, s.Poll(t0.Add(time.Millisecond), &sender))
	require.Equal(t, []crsf.FrameType{crsf.TypeBattery}, sender.types())

	sender.err = errors.New("broken")
	require.Error(t, s.Poll(t0.Add(2*time.Second), &sender))
}

func TestSchedulerExpiry(t *testing.T) {
	t0 := time.Unix(1000, 0)
	var sender testSender
	s := NewScheduler(&sender, 100*time.Millisecond)
	s.MaxAge = time.Second
	s.Set(t0, &crsf.Battery{Voltage: 100})
	s.Set(t0.Add(time.Second), &crsf.Vario{VerticalSpeed: 5})
	require.NoError(t, s.Poll(t0.Add(1500*time.Millisecond), &sender))
	require.Equal(t, []crsf.FrameType{crsf.TypeVario}, sender.types())
	require.Equal(t, 1, s.Len())

	s.Remove(crsf.TypeVario)
	require.Zero(t, s.Len())
	require.NoError(t, s.Poll(t0.Add(3*time.Second), &sender))
	require.Len(t, sender.sent, 1)
}

func TestSchedulerInLoop(t *testing.T) {
	t0 := time.Unix(1000, 0)
	var sender testSender
	s := NewScheduler(&sender, time.Second)
	loop := fx.NewLoop()
	loop.Now = func() time.Time { return t0 }
	loop.Add(s)

	loop.PostMessage(&SetMsg{Payload: &crsf.FlightMode{Mode: "ACRO"}})
	loop.RunIteration(context.Background())
	require.Equal(t, []crsf.FrameType{crsf.TypeFlightMode}, sender.types())
}
