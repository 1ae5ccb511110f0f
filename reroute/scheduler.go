// Package reroute implements the traffic-aware dynamic rerouting poll
// loop: while a session is navigating, it periodically checks whether a
// traffic-updated alternative route is materially better than the active
// one and reports the improvement. It never switches routes itself; that
// policy stays with the consumer.
package reroute

import (
	"context"
	"sync"
	"time"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
	"github.com/turnwise/navkit/observability"
	"github.com/turnwise/navkit/routing"
)

// Scheduler event types.
const (
	EventStarted     observability.EventType = "reroute.started"
	EventStopped     observability.EventType = "reroute.stopped"
	EventPoll        observability.EventType = "reroute.poll"
	EventBetterRoute observability.EventType = "reroute.better_route"
	EventPollFailed  observability.EventType = "reroute.poll_failed"
)

// Proposal describes a materially better alternative route. The consumer
// decides whether to switch.
type Proposal struct {
	Candidate     *route.Route
	ETADelta      time.Duration // time saved versus the active route
	DistanceDelta float64       // meters, positive when the candidate is longer
}

// ReportFunc receives better-route proposals. Called on the scheduler's
// poll goroutine.
type ReportFunc func(Proposal)

type positionState struct {
	location           geo.Location
	sectionIndex       int
	traveledOnSectionM float64
	remaining          time.Duration
	remainingM         float64
	known              bool
}

// Scheduler drives the dynamic rerouting poll loop.
//
// Start while already running implicitly replaces the previous run; Stop
// always fully deactivates polling. Location updates arrive via
// UpdateLocation from progress events; polls are additionally rate-limited
// so externally triggered ticks within the poll window are no-ops.
type Scheduler struct {
	planner  routing.Planner
	observer observability.Observer
	report   ReportFunc
	cfg      Config

	mu       sync.Mutex
	active   *route.Route
	position positionState
	lastPoll time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a Scheduler. A nil observer falls back to
// NoOpObserver; report may be nil when proposals should only be observed.
func NewScheduler(planner routing.Planner, observer observability.Observer, report ReportFunc, cfg Config) *Scheduler {
	defaults := DefaultConfig()
	defaults.Merge(&cfg)

	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	return &Scheduler{
		planner:  planner,
		observer: observer,
		report:   report,
		cfg:      defaults,
	}
}

// Start begins polling against the given active route. A running scheduler
// is restarted: the previous loop is stopped before the new one begins.
func (s *Scheduler) Start(ctx context.Context, active *route.Route) {
	s.Stop()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.active = active
	s.position = positionState{}
	s.lastPoll = time.Now()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.loop(loopCtx, done)

	s.observer.OnEvent(ctx, observability.NewEvent(EventStarted, observability.LevelInfo, "reroute.Scheduler", map[string]any{
		"poll_interval": s.cfg.PollInterval.String(),
	}))
}

// Stop deactivates polling. Stopping an inactive scheduler is a no-op.
// Stop returns after the poll goroutine has exited.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	s.observer.OnEvent(context.Background(), observability.NewEvent(EventStopped, observability.LevelInfo, "reroute.Scheduler", nil))
}

// Running reports whether the poll loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// UpdateLocation records the most recent map-matched position and route
// progress. Called from every progress event.
func (s *Scheduler) UpdateLocation(loc geo.Location, sectionIndex int, traveledOnSectionM float64, remaining time.Duration, remainingM float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = positionState{
		location:           loc,
		sectionIndex:       sectionIndex,
		traveledOnSectionM: traveledOnSectionM,
		remaining:          remaining,
		remainingM:         remainingM,
		known:              true,
	}
}

// Tick evaluates the active route against a fresh alternative if the poll
// window has elapsed since the previous evaluation. Ticks within the
// window are no-ops. The internal loop calls this on every timer fire;
// tests call it directly.
func (s *Scheduler) Tick(ctx context.Context) {
	s.mu.Lock()
	if time.Since(s.lastPoll) < s.cfg.PollInterval {
		s.mu.Unlock()
		return
	}
	s.lastPoll = time.Now()
	active := s.active
	position := s.position
	s.mu.Unlock()

	s.poll(ctx, active, position)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

func (s *Scheduler) poll(ctx context.Context, active *route.Route, position positionState) {
	if active == nil || !position.known {
		return
	}

	destination, ok := active.Destination()
	if !ok {
		return
	}

	waypoints := []geo.Waypoint{
		geo.WaypointFromLocation(position.location),
		geo.NewWaypoint(destination),
	}

	candidate, err := s.planner.ComputeRoute(ctx, waypoints, routing.Options{TrafficAware: true})
	if err != nil {
		// A failed poll never interrupts navigation; the next tick tries
		// again.
		s.observer.OnEvent(ctx, observability.NewEvent(EventPollFailed, observability.LevelWarning, "reroute.Scheduler", map[string]any{
			"error": err.Error(),
		}))
		return
	}

	etaDelta := position.remaining - candidate.Duration
	distanceDelta := candidate.LengthM - position.remainingM

	s.observer.OnEvent(ctx, observability.NewEvent(EventPoll, observability.LevelVerbose, "reroute.Scheduler", map[string]any{
		"eta_delta":      etaDelta.String(),
		"distance_delta": distanceDelta,
	}))

	if !s.materiallyBetter(etaDelta, position.remaining) {
		return
	}

	s.observer.OnEvent(ctx, observability.NewEvent(EventBetterRoute, observability.LevelInfo, "reroute.Scheduler", map[string]any{
		"eta_delta":      etaDelta.String(),
		"distance_delta": distanceDelta,
	}))

	if s.report != nil {
		s.report(Proposal{
			Candidate:     candidate,
			ETADelta:      etaDelta,
			DistanceDelta: distanceDelta,
		})
	}
}

// materiallyBetter applies the improvement thresholds: the saving must
// clear both the absolute minimum and the relative minimum, so the tighter
// of the two governs.
func (s *Scheduler) materiallyBetter(etaDelta, remaining time.Duration) bool {
	if etaDelta < s.cfg.MinTimeDelta {
		return false
	}
	if remaining <= 0 {
		return false
	}
	return float64(etaDelta)/float64(remaining) >= s.cfg.MinRelativeDelta
}
