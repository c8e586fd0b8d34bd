package link

// Gate tracks passthrough mode. Baud rates are 0 when unchanged.
type Gate struct {
	active bool
	baud   int
}

// Active indicates passthrough mode.
func (g *Gate) Active() bool {
	return g.active
}

// Baud returns the passthrough baud rate, 0 when the protocol baud is kept.
func (g *Gate) Baud() int {
	return g.baud
}

// Enter activates passthrough. Baud 0 keeps whatever baud rate is in use.
// It returns the baud rate the port must be reopened with, or 0 if no
// reopen is needed.
func (g *Gate) Enter(baud, protocolBaud int) int {
	g.active = true
	if baud == 0 {
		return 0
	}
	if baud == protocolBaud {
		baud = 0
	}
	if baud == g.baud {
		return 0
	}
	g.baud = baud
	if baud == 0 {
		return protocolBaud
	}
	return baud
}

// Exit deactivates passthrough. It returns the protocol baud rate when the
// port must be reopened, or 0.
func (g *Gate) Exit(protocolBaud int) int {
	if !g.active {
		return 0
	}
	g.active = false
	if g.baud == 0 {
		return 0
	}
	g.baud = 0
	return protocolBaud
}
