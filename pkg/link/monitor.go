package link

import "time"

// LinkState is the liveness of the link.
type LinkState int

// Link states.
const (
	LinkDown LinkState = iota
	LinkUp
)

func (s LinkState) String() string {
	if s == LinkUp {
		return "up"
	}
	return "down"
}

// DefaultFailsafeTimeout is the time without channel frames before the
// link is considered down.
const DefaultFailsafeTimeout = 300 * time.Millisecond

// Monitor tracks link liveness from channel frames.
type Monitor struct {
	Timeout time.Duration

	state LinkState
	last  time.Time
}

// State gets the current state.
func (m *Monitor) State() LinkState {
	return m.state
}

// LastChannels returns the time of the last channel frame.
func (m *Monitor) LastChannels() time.Time {
	return m.last
}

// ChannelsReceived records a channel frame and reports the Down to Up edge.
func (m *Monitor) ChannelsReceived(now time.Time) bool {
	m.last = now
	if m.state == LinkUp {
		return false
	}
	m.state = LinkUp
	return true
}

// Check reports the Up to Down edge once the timeout expires.
func (m *Monitor) Check(now time.Time) bool {
	if m.state != LinkUp {
		return false
	}
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultFailsafeTimeout
	}
	if now.Sub(m.last) <= timeout {
		return false
	}
	m.state = LinkDown
	return true
}
