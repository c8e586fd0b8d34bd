package link

import "errors"

var (
	// ErrNotReady indicates the link is down and the role requires it up.
	ErrNotReady = errors.New("link not ready")
	// ErrPassthrough indicates frames can't be sent in passthrough mode.
	ErrPassthrough = errors.New("passthrough active")
	// ErrNotPassthrough indicates raw bytes can only be written in
	// passthrough mode.
	ErrNotPassthrough = errors.New("passthrough not active")
	// ErrWouldBlock indicates the peer is still talking on a half-duplex
	// line and the send should be retried later.
	ErrWouldBlock = errors.New("would block")
)

// IsSuppressed indicates a send was skipped by gating rather than failed.
func IsSuppressed(err error) bool {
	switch err {
	case ErrNotReady, ErrPassthrough, ErrWouldBlock:
		return true
	}
	return false
}
