package notify

import (
	"context"
	"fmt"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
	"github.com/turnwise/navkit/guidance"
	"github.com/turnwise/navkit/observability"
)

// Router event types.
const (
	EventManeuver    observability.EventType = "notify.maneuver"
	EventMilestone   observability.EventType = "notify.milestone"
	EventDeviation   observability.EventType = "notify.deviation"
	EventWarning     observability.EventType = "notify.warning"
	EventDestination observability.EventType = "notify.destination"
)

// Hooks are the policy callbacks the router raises back into its owner.
// The router formats and forwards; whether to act (leave Navigating,
// trigger a reroute) stays with the owner. All hooks are optional and are
// invoked on the caller's goroutine.
type Hooks struct {
	// Progress fires on every progress event, after formatting. Owners
	// use it to feed the reroute scheduler and tick the traffic
	// refresher.
	Progress func(p guidance.Progress)

	// DestinationReached fires on the route's terminal event.
	DestinationReached func(d guidance.DestinationReached)

	// Deviation fires once the configured number of consecutive deviation
	// events has arrived, with the deviation distance in meters.
	Deviation func(distanceM float64)
}

// Router consumes the guidance event stream and applies the per-kind
// consumption and formatting policy: maneuver lines to the text sink,
// verbatim speech to the speech sink, debounced deviations and progress
// side effects to the hooks. Router is not safe for concurrent use; the
// owning session serializes event delivery.
type Router struct {
	text     TextSink
	speech   SpeechSink
	observer observability.Observer
	hooks    Hooks
	cfg      Config

	active            *route.Route
	lastManeuverIndex int
	deviationStreak   int
}

// NewRouter creates a Router with the given sinks and policy hooks. A nil
// observer falls back to NoOpObserver.
func NewRouter(text TextSink, speech SpeechSink, observer observability.Observer, hooks Hooks, cfg Config) *Router {
	defaults := DefaultConfig()
	defaults.Merge(&cfg)

	if observer == nil {
		observer = observability.NoOpObserver{}
	}

	return &Router{
		text:              text,
		speech:            speech,
		observer:          observer,
		hooks:             hooks,
		cfg:               defaults,
		lastManeuverIndex: -1,
	}
}

// SetActiveRoute tells the router which route events refer to. The route's
// departure point is the deviation fallback for vehicles that never
// followed the route. Passing nil resets per-route state.
func (r *Router) SetActiveRoute(active *route.Route) {
	r.active = active
	r.lastManeuverIndex = -1
	r.deviationStreak = 0
}

// Route dispatches one guidance event through the notification policy.
func (r *Router) Route(ctx context.Context, ev guidance.Event) {
	switch e := ev.(type) {
	case guidance.Progress:
		r.routeProgress(ctx, e)
	case guidance.DestinationReached:
		r.text.Publish("You have reached your destination")
		r.emit(ctx, EventDestination, observability.LevelInfo, nil)
		if r.hooks.DestinationReached != nil {
			r.hooks.DestinationReached(e)
		}
	case guidance.Milestone:
		line := formatMilestone(e)
		r.text.Publish(line)
		r.emit(ctx, EventMilestone, observability.LevelInfo, map[string]any{
			"reached":      e.Reached,
			"user_defined": e.UserDefined(),
		})
	case guidance.Deviation:
		r.routeDeviation(ctx, e)
	case guidance.SpeedWarning:
		r.forwardWarning(ctx, speedWarningLine(e))
	case guidance.LaneAssistance:
		r.forwardWarning(ctx, laneLine(e))
	case guidance.RoadAttributes:
		r.forwardWarning(ctx, roadAttributesLine(e))
	case guidance.ZoneWarning:
		r.forwardWarning(ctx, fmt.Sprintf("%s zone %s", e.Zone, formatWarningStatus(e.Status)))
	case guidance.Restriction:
		r.forwardWarning(ctx, fmt.Sprintf("Restriction %s: %s", formatWarningStatus(e.Status), e.Description))
	case guidance.TollStop:
		r.forwardWarning(ctx, fmt.Sprintf("Toll station %s %s", e.Name, formatWarningStatus(e.Status)))
	case guidance.EventText:
		r.speech.Say(e.Text)
	}
}

func (r *Router) routeProgress(ctx context.Context, p guidance.Progress) {
	// Back on route; deviations must be consecutive to count.
	r.deviationStreak = 0

	if len(p.Maneuvers) > 0 {
		next := p.Maneuvers[0]
		prefix := "New maneuver"
		if next.Maneuver.Index == r.lastManeuverIndex {
			prefix = "Maneuver update"
		}
		r.lastManeuverIndex = next.Maneuver.Index

		line := fmt.Sprintf("%s: %s", prefix, FormatManeuver(next))
		r.text.Publish(line)
		r.emit(ctx, EventManeuver, observability.LevelVerbose, map[string]any{
			"maneuver_index": next.Maneuver.Index,
			"remaining_m":    next.RemainingM,
		})
	}

	if r.hooks.Progress != nil {
		r.hooks.Progress(p)
	}
}

func (r *Router) routeDeviation(ctx context.Context, d guidance.Deviation) {
	reference, ok := r.deviationReference(d)
	if !ok {
		return
	}
	distance := d.Location.Coordinates.DistanceTo(reference)

	r.deviationStreak++
	r.emit(ctx, EventDeviation, observability.LevelVerbose, map[string]any{
		"distance_m": distance,
		"streak":     r.deviationStreak,
	})

	if r.deviationStreak >= r.cfg.DeviationDebounce && r.hooks.Deviation != nil {
		r.hooks.Deviation(distance)
		r.deviationStreak = 0
	}
}

// deviationReference is the last known on-route position, falling back to
// the route's departure point when the vehicle never followed the route.
func (r *Router) deviationReference(d guidance.Deviation) (geo.Coordinates, bool) {
	if d.OnRouteValid {
		return d.LastOnRoute.Coordinates, true
	}
	if r.active == nil {
		return geo.Coordinates{}, false
	}
	return r.active.Departure()
}

func (r *Router) forwardWarning(ctx context.Context, line string) {
	r.text.Publish(line)
	r.emit(ctx, EventWarning, observability.LevelVerbose, map[string]any{"text": line})
}

func (r *Router) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	r.observer.OnEvent(ctx, observability.NewEvent(t, level, "notify.Router", data))
}

func speedWarningLine(e guidance.SpeedWarning) string {
	limitKMH := e.LimitMPS * 3.6
	if e.Status == guidance.SpeedWarningExceeded {
		return fmt.Sprintf("Speed limit exceeded (limit %.0f km/h)", limitKMH)
	}
	return fmt.Sprintf("Speed back within limit (%.0f km/h)", limitKMH)
}

func laneLine(e guidance.LaneAssistance) string {
	for i, lane := range e.Lanes {
		if lane.OnRoute {
			return fmt.Sprintf("Use lane %d of %d", i+1, len(e.Lanes))
		}
	}
	return fmt.Sprintf("Lane assistance: %d lanes ahead", len(e.Lanes))
}

func roadAttributesLine(e guidance.RoadAttributes) string {
	switch {
	case e.IsBridge:
		return "Crossing a bridge"
	case e.IsTunnel:
		return "Entering a tunnel"
	case e.IsDirtRoad:
		return "Unpaved road ahead"
	case e.IsTollway:
		return "Entering a tollway"
	default:
		return "Road attributes changed"
	}
}
