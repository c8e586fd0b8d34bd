package link

import "fmt"

// Role is the side of the link the engine runs on.
type Role int

// Roles.
const (
	// RoleReceiver talks to a receiver, e.g. on a flight controller.
	// Frames are only sent while the link is up.
	RoleReceiver Role = iota
	// RoleTransmitter talks to a transmitter module as a handset.
	RoleTransmitter
)

func (r Role) String() string {
	if r == RoleTransmitter {
		return "transmitter"
	}
	return "receiver"
}

// ParseRole parses the role name.
func ParseRole(s string) (Role, error) {
	switch s {
	case "receiver", "rx":
		return RoleReceiver, nil
	case "transmitter", "tx", "handset":
		return RoleTransmitter, nil
	}
	return RoleReceiver, fmt.Errorf("unknown role %q", s)
}
