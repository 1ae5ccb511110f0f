package nav

import "github.com/turnwise/navkit/observability"

// Session event types emitted through the observer.
const (
	EventSessionStart      observability.EventType = "session.start"
	EventSessionClose      observability.EventType = "session.close"
	EventRouteRequested    observability.EventType = "session.route.requested"
	EventRouteProposed     observability.EventType = "session.route.proposed"
	EventRouteFailed       observability.EventType = "session.route.failed"
	EventRouteConfirmed    observability.EventType = "session.route.confirmed"
	EventRouteDismissed    observability.EventType = "session.route.dismissed"
	EventNavigationStopped observability.EventType = "session.navigation.stopped"
	EventTrafficApplied    observability.EventType = "session.traffic.applied"
	EventRerouteProposed   observability.EventType = "session.reroute.proposed"
	EventCameraTracking    observability.EventType = "session.camera.tracking"
)
