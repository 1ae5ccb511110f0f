// Package guidance defines the contract of the turn-by-turn guidance
// engine and the closed event union it emits. The engine itself is an
// external collaborator; this package models only the surface the
// orchestrator depends on.
package guidance

import (
	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
)

// CameraBehavior selects how the map camera follows the vehicle.
type CameraBehavior string

const (
	// CameraNone removes camera behavior entirely, leaving manual
	// pan/zoom in control.
	CameraNone CameraBehavior = "none"
	// CameraDynamicFollow installs an auto-follow behavior that keeps the
	// map-matched position centered.
	CameraDynamicFollow CameraBehavior = "dynamic_follow"
)

// EventHandler receives the engine's event stream. The engine delivers
// events on its own threads; handlers must not block.
type EventHandler func(Event)

// Engine is the guidance collaborator surface. Exactly one navigation
// session owns an engine's route, camera, listener slot, and event handler
// registration at a time.
//
// SetRoute(nil) switches the engine to tracking-only mode: the engine keeps
// running and reporting map-matched position with no active route.
type Engine interface {
	// SetRoute binds a route for turn-by-turn guidance, or nil for
	// tracking-only mode.
	SetRoute(r *route.Route)

	// SetCameraBehavior installs the given camera behavior, replacing any
	// previous one.
	SetCameraBehavior(behavior CameraBehavior)

	// SetEventHandler registers the single event stream consumer. A nil
	// handler detaches the previous one.
	SetEventHandler(h EventHandler)

	// OnLocationUpdated is the engine's single location-listener slot, fed
	// by exactly one location source at a time.
	OnLocationUpdated(loc geo.Location)
}
