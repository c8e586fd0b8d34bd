package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/crsf.go/pkg/crsf"
)

func TestVoltageDivider(t *testing.T) {
	d := VoltageDivider{R1: 10000, R2: 1000}
	// full scale is 3.3V * 11
	require.Equal(t, 363, d.Decivolts(ADCMax))
	require.Equal(t, 0, d.Decivolts(0))
	d.Scale = 50
	require.Equal(t, 181, d.Decivolts(ADCMax))
}

func TestBatteryMonitor(t *testing.T) {
	t0 := time.Unix(1000, 0)
	s := NewScheduler(nil, time.Second)
	m := NewBatteryMonitor(s, VoltageDivider{R1: 10000, R2: 1000})

	require.True(t, m.Due(t0))
	adc := []int{ADCMax, ADCMax, 0, ADCMax, ADCMax}
	for n, v := range adc {
		now := t0.Add(time.Duration(n) * 100 * time.Millisecond)
		require.True(t, m.Due(now))
		queued := m.Sample(now, v)
		require.Equal(t, n == len(adc)-1, queued)
		require.False(t, m.Due(now.Add(50*time.Millisecond)))
	}
	require.Equal(t, 363, m.Decivolts())

	var sender testSender
	require.NoError(t, s.Poll(t0, &sender))
	require.Equal(t, []crsf.Payload{&crsf.Battery{Voltage: 363}}, sender.sent)
}
