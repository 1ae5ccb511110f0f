// Package routing wraps the asynchronous route-computation collaborator:
// the Planner contract, its error taxonomy, and the callback-based request
// service the navigation session consumes. An offline geometric planner
// makes the module runnable without a live routing backend.
package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
)

// Code classifies planner failures.
type Code string

const (
	CodeNoRouteFound     Code = "no_route_found"
	CodeInvalidWaypoints Code = "invalid_waypoints"
	CodeTimeout          Code = "timeout"
	CodeInternal         Code = "internal"
)

// Error is a typed routing failure. All planner failures are recoverable:
// the session stays in its prior state and the next request tries again.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("routing: %s: %s", e.Code, e.Message)
}

// NewError creates a routing Error.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts a routing *Error from err, if one is wrapped.
func AsError(err error) (*Error, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// Options tune a route computation request.
type Options struct {
	// TrafficAware requests traffic-dependent timings.
	TrafficAware bool `json:"traffic_aware"`

	// SpeedMPS overrides the planner's speed model; zero keeps the
	// planner default.
	SpeedMPS float64 `json:"speed_mps,omitempty"`
}

// Planner computes routes between waypoints and recomputes traffic timings
// on existing routes. Implementations may block; the Service wraps them
// into the callback style the session consumes.
type Planner interface {
	// ComputeRoute computes a route visiting the waypoints in order.
	ComputeRoute(ctx context.Context, waypoints []geo.Waypoint, opts Options) (*route.Route, error)

	// ComputeTrafficOverlay recomputes traffic timings for r given the
	// vehicle's position expressed as the current section index and the
	// distance traveled on that section. The overlay affects durations
	// only.
	ComputeTrafficOverlay(ctx context.Context, r *route.Route, sectionIndex int, traveledOnSectionM float64) (*route.TrafficOverlay, error)
}
