package routing

import (
	"context"
	"time"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
)

const defaultRequestTimeout = 30 * time.Second

// RouteCallback receives the outcome of an asynchronous route computation.
// Exactly one of route and err is non-nil.
type RouteCallback func(r *route.Route, err error)

// OverlayCallback receives the outcome of an asynchronous traffic overlay
// computation.
type OverlayCallback func(overlay *route.TrafficOverlay, err error)

// Service turns the blocking Planner contract into the single asynchronous
// call shape the navigation session consumes: request now, result delivered
// later through a callback on a service-owned goroutine. Callers are
// responsible for marshaling the callback onto their own event queue.
type Service struct {
	planner Planner
	timeout time.Duration
}

// NewService wraps planner with the default per-request timeout.
func NewService(planner Planner) *Service {
	return &Service{planner: planner, timeout: defaultRequestTimeout}
}

// NewServiceWithTimeout wraps planner with a custom per-request timeout.
func NewServiceWithTimeout(planner Planner, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Service{planner: planner, timeout: timeout}
}

// RequestRoute computes a route asynchronously and delivers the result to
// cb. The call never blocks.
func (s *Service) RequestRoute(ctx context.Context, waypoints []geo.Waypoint, opts Options, cb RouteCallback) {
	go func() {
		reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		r, err := s.planner.ComputeRoute(reqCtx, waypoints, opts)
		cb(r, err)
	}()
}

// RequestTrafficOverlay recomputes traffic timings asynchronously and
// delivers the result to cb. The call never blocks.
func (s *Service) RequestTrafficOverlay(ctx context.Context, r *route.Route, sectionIndex int, traveledOnSectionM float64, cb OverlayCallback) {
	go func() {
		reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		overlay, err := s.planner.ComputeTrafficOverlay(reqCtx, r, sectionIndex, traveledOnSectionM)
		cb(overlay, err)
	}()
}
