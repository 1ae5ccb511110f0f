package nav

import "errors"

var (
	// ErrNoLocationFix is returned when device-based routing is requested
	// without a last-known device location. The user must enable
	// positioning or pick simulated mode.
	ErrNoLocationFix = errors.New("no GPS location available")

	// ErrInvalidState is returned when an operation is not legal in the
	// session's current state.
	ErrInvalidState = errors.New("operation not allowed in current session state")

	// ErrSessionClosed is returned when an operation arrives after the
	// session has been closed.
	ErrSessionClosed = errors.New("navigation session closed")
)
