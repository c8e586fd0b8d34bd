package link

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonitor(t *testing.T) {
	start := time.Unix(1000, 0)
	var m Monitor
	require.Equal(t, LinkDown, m.State())
	require.False(t, m.Check(start))

	require.True(t, m.ChannelsReceived(start))
	require.Equal(t, LinkUp, m.State())
	require.False(t, m.ChannelsReceived(start.Add(100*time.Millisecond)))
	require.False(t, m.ChannelsReceived(start.Add(200*time.Millisecond)))

	require.False(t, m.Check(start.Add(500*time.Millisecond)))
	require.True(t, m.Check(start.Add(501*time.Millisecond)))
	require.Equal(t, LinkDown, m.State())
	require.False(t, m.Check(start.Add(time.Second)))

	require.True(t, m.ChannelsReceived(start.Add(2*time.Second)))
}

func TestMonitorCustomTimeout(t *testing.T) {
	start := time.Unix(1000, 0)
	m := Monitor{Timeout: time.Second}
	m.ChannelsReceived(start)
	require.False(t, m.Check(start.Add(time.Second)))
	require.True(t, m.Check(start.Add(time.Second+time.Millisecond)))
}
