// Package nav implements the navigation session orchestrator: it owns the
// session state machine, resolves waypoints, sequences the routing,
// guidance, and positioning collaborators, and serializes their
// asynchronous callbacks through a single-consumer event queue.
package nav

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
	"github.com/turnwise/navkit/guidance"
	"github.com/turnwise/navkit/location"
	"github.com/turnwise/navkit/nav/signal"
	"github.com/turnwise/navkit/notify"
	"github.com/turnwise/navkit/observability"
	"github.com/turnwise/navkit/reroute"
	"github.com/turnwise/navkit/routing"
	"github.com/turnwise/navkit/traffic"
)

// State is the session's lifecycle state.
type State string

const (
	// StateIdle has no route; the engine tracks the map-matched position.
	StateIdle State = "idle"
	// StateRouteProposed has a computed route awaiting user confirmation.
	StateRouteProposed State = "route_proposed"
	// StateNavigating has the route bound to the engine and a location
	// source active.
	StateNavigating State = "navigating"
	// StateStopped is terminal for the current route; clearing the map
	// returns to idle.
	StateStopped State = "stopped"
)

// Option configures a Session after config-driven initialization.
type Option func(*Session)

// WithObserver overrides the config-resolved observer.
func WithObserver(o observability.Observer) Option {
	return func(s *Session) { s.observer = o }
}

// WithTextSink overrides the default in-memory text feedback channel.
func WithTextSink(t notify.TextSink) Option {
	return func(s *Session) { s.text = t }
}

// WithSpeechSink overrides the default in-memory speech queue.
func WithSpeechSink(sp notify.SpeechSink) Option {
	return func(s *Session) { s.speech = sp }
}

// WithProposalFunc registers a consumer for better-route proposals. The
// session never switches routes on its own; the consumer decides.
func WithProposalFunc(fn func(reroute.Proposal)) Option {
	return func(s *Session) { s.proposalFn = fn }
}

// WithRequestTimeout overrides the route request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Session) { s.requestTimeout = d }
}

// Session is the navigation session orchestrator. Exactly one Session owns
// the guidance engine's listener registrations at a time; all state
// transitions run on its internal event loop.
type Session struct {
	id             string
	cfg            Config
	engine         guidance.Engine
	planner        routing.Planner
	provider       location.Provider
	observer       observability.Observer
	text           notify.TextSink
	speech         notify.SpeechSink
	proposalFn     func(reroute.Proposal)
	requestTimeout time.Duration

	service   *routing.Service
	router    *notify.Router
	scheduler *reroute.Scheduler
	refresher *traffic.Refresher
	metrics   *Metrics

	dialog *signal.Value[Dialog]
	camera *signal.Value[bool]

	tasks  *mailbox[func()]
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// Session state below is written only by loop tasks. Reads from other
	// goroutines go through snapshots guarded by the loop (State,
	// ActiveRoute use call).
	state           State
	startWaypoint   *geo.Waypoint
	destWaypoint    *geo.Waypoint
	activeRoute     *route.Route
	isSimulated     bool
	cameraEnabled   bool
	mapCenter       geo.Coordinates
	source          location.Source
	pendingProposal string
	closed          bool
}

// New creates and starts a navigation session from configuration. The
// engine, planner, and positioning provider are injected; their
// construction failures are fatal configuration errors for the caller, not
// retried here. The session immediately binds device positioning in
// tracking mode and registers itself as the engine's event consumer.
func New(ctx context.Context, cfg *Config, engine guidance.Engine, planner routing.Planner, provider location.Provider, opts ...Option) (*Session, error) {
	if engine == nil {
		return nil, fmt.Errorf("guidance engine is required")
	}
	if planner == nil {
		return nil, fmt.Errorf("route planner is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("positioning provider is required")
	}

	merged := DefaultConfig()
	if cfg != nil {
		merged.Merge(cfg)
	}

	observer, err := observability.GetObserver(merged.Observer)
	if err != nil {
		return nil, fmt.Errorf("resolve observer: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)

	s := &Session{
		id:            uuid.Must(uuid.NewV7()).String(),
		cfg:           merged,
		engine:        engine,
		planner:       planner,
		provider:      provider,
		observer:      observer,
		text:          &notify.LatestText{},
		speech:        &notify.SpeechQueue{},
		metrics:       NewMetrics(),
		dialog:        signal.NewValue[Dialog](),
		camera:        signal.NewValue[bool](),
		tasks:         newMailbox[func()](loopCtx, merged.QueueSize),
		ctx:           loopCtx,
		cancel:        cancel,
		done:          make(chan struct{}),
		state:         StateIdle,
		cameraEnabled: true,
		mapCenter:     merged.MapCenter,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.requestTimeout > 0 {
		s.service = routing.NewServiceWithTimeout(planner, s.requestTimeout)
	} else {
		s.service = routing.NewService(planner)
	}

	s.router = notify.NewRouter(s.text, s.speech, s.observer, notify.Hooks{
		Progress:           s.onProgress,
		DestinationReached: s.onDestinationReached,
		Deviation:          s.onDeviation,
	}, merged.Notify)

	s.scheduler = reroute.NewScheduler(planner, s.observer, s.onRerouteProposal, merged.Reroute)
	s.refresher = traffic.NewRefresher(planner, s.observer, s.onTrafficOverlay, merged.Traffic)

	engine.SetEventHandler(s.onGuidanceEvent)

	s.source = location.NewDeviceSource(provider, engine, location.AccuracyBalanced, nil)
	if err := s.source.Start(); err != nil {
		cancel()
		engine.SetEventHandler(nil)
		return nil, fmt.Errorf("start device positioning: %w", err)
	}

	s.applyCamera()
	s.dialog.Set(NoDialog())
	s.camera.Set(true)

	go s.loop()

	s.emit(EventSessionStart, observability.LevelInfo, map[string]any{
		"map_center": s.mapCenter.String(),
	})

	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// DialogState returns the UI-facing dialog observable. Setting a new
// dialog supersedes the previous one.
func (s *Session) DialogState() *signal.Value[Dialog] { return s.dialog }

// CameraTracking returns the camera tracking observable.
func (s *Session) CameraTracking() *signal.Value[bool] { return s.camera }

// Metrics returns a snapshot of the session counters.
func (s *Session) Metrics() MetricsSnapshot { return s.metrics.Snapshot() }

// State returns the session's current state.
func (s *Session) State() State {
	state := StateStopped
	if err := s.call(func() error {
		state = s.state
		return nil
	}); err != nil {
		return state
	}
	return state
}

// ActiveRoute returns the currently held route, or nil.
func (s *Session) ActiveRoute() *route.Route {
	var r *route.Route
	_ = s.call(func() error {
		r = s.activeRoute
		return nil
	})
	return r
}

// SetMapCenter updates the center of the fallback waypoint window.
func (s *Session) SetMapCenter(c geo.Coordinates) error {
	return s.call(func() error {
		s.mapCenter = c
		return nil
	})
}

// SetStartWaypoint records a long-press start selection. It is honored
// only for simulated routing; device-based routing always starts at the
// current device location.
func (s *Session) SetStartWaypoint(wp geo.Waypoint) error {
	return s.call(func() error {
		s.startWaypoint = &wp
		return nil
	})
}

// SetDestinationWaypoint records the destination selection.
func (s *Session) SetDestinationWaypoint(wp geo.Waypoint) error {
	return s.call(func() error {
		s.destWaypoint = &wp
		return nil
	})
}

// RequestRoute resolves waypoints per the session policy and computes a
// route asynchronously. On success the session moves to RouteProposed and
// publishes a confirmation dialog; on failure it publishes an error dialog
// and stays idle. The precondition failure (device routing without a GPS
// fix) is returned synchronously as ErrNoLocationFix.
func (s *Session) RequestRoute(simulated bool) error {
	return s.call(func() error { return s.requestRoute(simulated) })
}

// ConfirmRoute starts navigating the proposed route. Never automatic; only
// explicit user confirmation reaches this.
func (s *Session) ConfirmRoute() error {
	return s.call(func() error { return s.confirmRoute() })
}

// DismissRoute discards the proposed route and returns to idle.
func (s *Session) DismissRoute() error {
	return s.call(func() error { return s.dismissRoute() })
}

// ClearMap discards the route and waypoints from any state and returns the
// session to idle, tearing navigation down first if needed.
func (s *Session) ClearMap() error {
	return s.call(func() error {
		if s.state == StateNavigating {
			s.stopNavigating(StateIdle)
		}
		s.state = StateIdle
		s.activeRoute = nil
		s.startWaypoint = nil
		s.destWaypoint = nil
		s.pendingProposal = ""
		s.router.SetActiveRoute(nil)
		s.dialog.Set(NoDialog())
		return nil
	})
}

// SetCameraTracking toggles the auto-follow camera behavior. Orthogonal to
// the session state; applied immediately and re-applied on every
// transition.
func (s *Session) SetCameraTracking(enabled bool) error {
	return s.call(func() error {
		s.cameraEnabled = enabled
		s.applyCamera()
		s.camera.Set(enabled)
		s.emit(EventCameraTracking, observability.LevelVerbose, map[string]any{"enabled": enabled})
		return nil
	})
}

// Close tears the session down: timers cancelled, listeners detached, the
// bound source stopped, engine left in tracking-only mode. Idempotent.
func (s *Session) Close() {
	alreadyClosed := false
	if err := s.call(func() error {
		if s.closed {
			alreadyClosed = true
			return nil
		}
		s.closed = true
		s.scheduler.Stop()
		if s.source != nil {
			s.source.Stop()
		}
		s.engine.SetEventHandler(nil)
		s.engine.SetRoute(nil)
		return nil
	}); err != nil || alreadyClosed {
		return
	}

	s.cancel()
	<-s.done

	s.emit(EventSessionClose, observability.LevelInfo, nil)
}

// --- event loop ---

func (s *Session) loop() {
	defer close(s.done)

	for {
		task, err := s.tasks.Receive(s.ctx)
		if err != nil {
			return
		}
		task()
	}
}

// call runs fn on the event loop and waits for its result. This is the
// only way session state is touched, giving the single-writer discipline.
func (s *Session) call(fn func() error) error {
	reply := make(chan error, 1)
	task := func() { reply <- fn() }

	if err := s.tasks.Send(s.ctx, task); err != nil {
		return ErrSessionClosed
	}

	select {
	case err := <-reply:
		return err
	case <-s.ctx.Done():
		return ErrSessionClosed
	}
}

// enqueue schedules fn on the event loop without waiting. Used by
// collaborator callbacks arriving on foreign goroutines.
func (s *Session) enqueue(fn func()) {
	s.tasks.TrySend(fn)
}

// --- state transitions (loop goroutine only) ---

func (s *Session) requestRoute(simulated bool) error {
	if s.state != StateIdle && s.state != StateStopped {
		return ErrInvalidState
	}

	start := s.startWaypoint
	if !simulated {
		fix, ok := s.provider.LastKnown()
		if !ok {
			s.dialog.Set(ErrorDialog("Error", "No GPS location found."))
			s.emit(EventRouteFailed, observability.LevelWarning, map[string]any{"reason": "no location fix"})
			return ErrNoLocationFix
		}
		// Device routing always departs from where the vehicle actually
		// is, regardless of any long-press start.
		wp := geo.WaypointFromLocation(fix)
		start = &wp
	}
	if start == nil {
		wp := geo.RandomWaypointNear(s.mapCenter)
		start = &wp
	}

	dest := s.destWaypoint
	if dest == nil {
		wp := geo.RandomWaypointNear(s.mapCenter)
		dest = &wp
	}

	s.startWaypoint = start
	s.destWaypoint = dest
	s.isSimulated = simulated

	proposalID := uuid.Must(uuid.NewV7()).String()
	s.pendingProposal = proposalID

	waypoints := []geo.Waypoint{*start, *dest}
	s.emit(EventRouteRequested, observability.LevelInfo, map[string]any{
		"simulated": simulated,
		"start":     start.Coordinates.String(),
		"dest":      dest.Coordinates.String(),
	})

	s.service.RequestRoute(s.ctx, waypoints, routing.Options{TrafficAware: true}, func(r *route.Route, err error) {
		s.enqueue(func() { s.onRouteComputed(proposalID, simulated, r, err) })
	})

	return nil
}

func (s *Session) onRouteComputed(proposalID string, simulated bool, r *route.Route, err error) {
	// A cleared map or a newer request supersedes this result.
	if s.pendingProposal != proposalID {
		return
	}
	s.pendingProposal = ""

	if err != nil {
		s.metrics.RecordRouteFailed()
		s.dialog.Set(ErrorDialog("Routing failed", err.Error()))
		s.emit(EventRouteFailed, observability.LevelWarning, map[string]any{"error": err.Error()})
		return
	}

	s.metrics.RecordRouteProposed()
	s.activeRoute = r
	s.state = StateRouteProposed
	s.dialog.Set(RouteConfirmationDialog(r, simulated))
	s.emit(EventRouteProposed, observability.LevelInfo, map[string]any{
		"summary":   r.Summary(),
		"simulated": simulated,
	})
}

func (s *Session) confirmRoute() error {
	if s.state != StateRouteProposed {
		return ErrInvalidState
	}
	r := s.activeRoute

	s.engine.SetRoute(r)
	s.router.SetActiveRoute(r)

	var next location.Source
	if s.isSimulated {
		next = location.NewSimulatedSource(r, s.engine, s.cfg.Simulated)
	} else {
		next = location.NewDeviceSource(s.provider, s.engine, location.AccuracyNavigation, nil)
	}
	s.switchSource(next)

	s.scheduler.Start(s.ctx, r)
	s.refresher.Reset()
	s.applyCamera()
	s.dialog.Set(NoDialog())
	s.state = StateNavigating

	s.emit(EventRouteConfirmed, observability.LevelInfo, map[string]any{
		"simulated": s.isSimulated,
		"summary":   r.Summary(),
	})
	return nil
}

func (s *Session) dismissRoute() error {
	if s.state != StateRouteProposed {
		return ErrInvalidState
	}
	s.activeRoute = nil
	s.router.SetActiveRoute(nil)
	s.dialog.Set(NoDialog())
	s.state = StateIdle
	s.emit(EventRouteDismissed, observability.LevelInfo, nil)
	return nil
}

// stopNavigating unbinds the route and returns the engine to tracking-only
// mode. The engine keeps running and reporting map-matched position.
func (s *Session) stopNavigating(to State) {
	s.scheduler.Stop()
	s.refresher.Reset()

	s.engine.SetRoute(nil)
	s.router.SetActiveRoute(nil)

	s.switchSource(location.NewDeviceSource(s.provider, s.engine, location.AccuracyBalanced, nil))
	s.applyCamera()

	if to == StateIdle {
		s.activeRoute = nil
	}
	s.state = to

	s.emit(EventNavigationStopped, observability.LevelInfo, map[string]any{"state": string(to)})
}

// switchSource stops the previous source before starting the next one.
// Stop is synchronous, so fixes from two sources never interleave.
func (s *Session) switchSource(next location.Source) {
	if s.source != nil {
		s.source.Stop()
	}
	s.source = next
	if err := next.Start(); err != nil {
		s.emit(EventRouteFailed, observability.LevelError, map[string]any{"error": err.Error()})
	}
}

func (s *Session) applyCamera() {
	if s.cameraEnabled {
		s.engine.SetCameraBehavior(guidance.CameraDynamicFollow)
	} else {
		s.engine.SetCameraBehavior(guidance.CameraNone)
	}
}

// --- collaborator callbacks (foreign goroutines; enqueue only) ---

func (s *Session) onGuidanceEvent(ev guidance.Event) {
	s.enqueue(func() {
		s.metrics.RecordEventRouted()
		s.router.Route(s.ctx, ev)
	})
}

func (s *Session) onTrafficOverlay(overlay *route.TrafficOverlay) {
	s.enqueue(func() {
		if s.activeRoute == nil || s.activeRoute.Handle != overlay.RouteHandle {
			return
		}
		if err := s.activeRoute.ApplyTrafficOverlay(overlay); err != nil {
			s.emit(EventTrafficApplied, observability.LevelWarning, map[string]any{"error": err.Error()})
			return
		}
		s.metrics.RecordTrafficRefresh()
		s.emit(EventTrafficApplied, observability.LevelInfo, map[string]any{
			"duration": s.activeRoute.Duration.String(),
		})
	})
}

func (s *Session) onRerouteProposal(p reroute.Proposal) {
	s.enqueue(func() {
		if s.state != StateNavigating {
			return
		}
		s.metrics.RecordReroute()
		s.text.Publish(fmt.Sprintf("Better route available: saves %s (%+.0f m)", p.ETADelta.Round(time.Second), p.DistanceDelta))
		s.emit(EventRerouteProposed, observability.LevelInfo, map[string]any{
			"eta_delta":      p.ETADelta.String(),
			"distance_delta": p.DistanceDelta,
		})
		if s.proposalFn != nil {
			s.proposalFn(p)
		}
	})
}

// --- router hooks (already on the loop goroutine) ---

func (s *Session) onProgress(p guidance.Progress) {
	var remaining time.Duration
	var remainingM float64
	for _, sec := range p.Sections {
		remaining += sec.RemainingDuration
		remainingM += sec.RemainingM
	}

	s.scheduler.UpdateLocation(p.Location, p.SectionIndex, p.TraveledOnSectionM, remaining, remainingM)
	s.refresher.Tick(s.ctx, s.activeRoute, p.SectionIndex, p.TraveledOnSectionM)
}

func (s *Session) onDestinationReached(guidance.DestinationReached) {
	if s.state != StateNavigating {
		return
	}
	s.stopNavigating(StateStopped)
}

func (s *Session) onDeviation(distanceM float64) {
	s.metrics.RecordDeviation()
}

func (s *Session) emit(t observability.EventType, level observability.Level, data map[string]any) {
	ev := observability.NewEvent(t, level, "nav.Session", data)
	ev.Session = s.id
	s.observer.OnEvent(s.ctx, ev)
}
