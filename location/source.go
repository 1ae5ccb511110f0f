// Package location provides the uniform push abstraction over positioning
// feeds: live device fixes and simulated route replay. Both implement the
// same Source contract so the navigation session can switch between them
// without caring which is bound.
package location

import "github.com/turnwise/navkit/core/geo"

// Listener receives exactly one callback per fix. The guidance engine's
// location-listener slot satisfies this interface.
type Listener interface {
	OnLocationUpdated(loc geo.Location)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(geo.Location)

func (f ListenerFunc) OnLocationUpdated(loc geo.Location) { f(loc) }

// Source is a feed of positioning fixes pushed to a single listener.
//
// Start on an already-started source is a no-op, not an error. Stop is
// idempotent and returns only after no further fixes will be delivered, so
// callers can bind a new source immediately afterwards. Only one source may
// feed the guidance engine's listener slot at a time; enforcing that
// exclusivity is the caller's job.
type Source interface {
	Start() error
	Stop()
	// Active reports whether the source is currently started.
	Active() bool
}

// Accuracy selects the positioning quality requested from the device
// provider.
type Accuracy string

const (
	// AccuracyNavigation requests the highest update rate and precision,
	// suitable for turn-by-turn guidance.
	AccuracyNavigation Accuracy = "navigation"
	// AccuracyBalanced requests reduced precision for tracking-only use.
	AccuracyBalanced Accuracy = "balanced"
)

// Status reports the device positioning subsystem's availability.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
	StatusDenied      Status = "denied"
)

// StatusFunc receives device positioning status changes.
type StatusFunc func(Status)
