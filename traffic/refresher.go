// Package traffic implements the throttled traffic-overlay refresh: a side
// effect of progress events that periodically re-times the active route
// without ever touching its geometry.
package traffic

import (
	"context"
	"sync"
	"time"

	"github.com/turnwise/navkit/core/route"
	"github.com/turnwise/navkit/observability"
	"github.com/turnwise/navkit/routing"
)

// Refresher event types.
const (
	EventRefreshRequested observability.EventType = "traffic.refresh_requested"
	EventRefreshSkipped   observability.EventType = "traffic.refresh_skipped"
	EventRefreshFailed    observability.EventType = "traffic.refresh_failed"
)

// ApplyFunc receives a freshly computed overlay. Called on the refresher's
// request goroutine; the owner marshals the application onto its own event
// queue so route mutation stays single-writer.
type ApplyFunc func(overlay *route.TrafficOverlay)

// Refresher issues throttled traffic overlay recomputations. A tick within
// the configured interval of the previous refresh is a no-op; on planner
// failure the prior timing is retained and the next due tick tries again.
type Refresher struct {
	planner  routing.Planner
	observer observability.Observer
	apply    ApplyFunc
	cfg      Config

	mu          sync.Mutex
	lastRefresh time.Time
}

// NewRefresher creates a Refresher. A nil observer falls back to
// NoOpObserver.
func NewRefresher(planner routing.Planner, observer observability.Observer, apply ApplyFunc, cfg Config) *Refresher {
	defaults := DefaultConfig()
	defaults.Merge(&cfg)

	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	return &Refresher{
		planner:  planner,
		observer: observer,
		apply:    apply,
		cfg:      defaults,
	}
}

// LastRefresh returns when the last overlay request was issued.
func (f *Refresher) LastRefresh() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRefresh
}

// Reset clears the throttle window, typically on route change.
func (f *Refresher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRefresh = time.Time{}
}

// Tick requests a traffic overlay for the active route at the vehicle's
// current progress, unless the throttle interval has not yet elapsed.
// Returns true when a refresh was issued.
func (f *Refresher) Tick(ctx context.Context, active *route.Route, sectionIndex int, traveledOnSectionM float64) bool {
	if active == nil {
		return false
	}

	f.mu.Lock()
	if !f.lastRefresh.IsZero() && time.Since(f.lastRefresh) < f.cfg.Interval {
		f.mu.Unlock()
		f.observer.OnEvent(ctx, observability.NewEvent(EventRefreshSkipped, observability.LevelVerbose, "traffic.Refresher", nil))
		return false
	}
	f.lastRefresh = time.Now()
	f.mu.Unlock()

	f.observer.OnEvent(ctx, observability.NewEvent(EventRefreshRequested, observability.LevelInfo, "traffic.Refresher", map[string]any{
		"section_index": sectionIndex,
		"traveled_m":    traveledOnSectionM,
	}))

	go func() {
		overlay, err := f.planner.ComputeTrafficOverlay(ctx, active, sectionIndex, traveledOnSectionM)
		if err != nil {
			// Retain the prior timing; the next due tick retries.
			f.observer.OnEvent(ctx, observability.NewEvent(EventRefreshFailed, observability.LevelWarning, "traffic.Refresher", map[string]any{
				"error": err.Error(),
			}))
			return
		}
		f.apply(overlay)
	}()

	return true
}
