package nav

import "sync/atomic"

// MetricsSnapshot is a point-in-time copy of the session counters.
type MetricsSnapshot struct {
	EventsRouted     int64
	RoutesProposed   int64
	RoutesFailed     int64
	Reroutes         int64
	TrafficRefreshes int64
	Deviations       int64
}

// Metrics counts session activity. All methods are safe for concurrent use.
type Metrics struct {
	eventsRouted     atomic.Int64
	routesProposed   atomic.Int64
	routesFailed     atomic.Int64
	reroutes         atomic.Int64
	trafficRefreshes atomic.Int64
	deviations       atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) RecordEventRouted()    { m.eventsRouted.Add(1) }
func (m *Metrics) RecordRouteProposed()  { m.routesProposed.Add(1) }
func (m *Metrics) RecordRouteFailed()    { m.routesFailed.Add(1) }
func (m *Metrics) RecordReroute()        { m.reroutes.Add(1) }
func (m *Metrics) RecordTrafficRefresh() { m.trafficRefreshes.Add(1) }
func (m *Metrics) RecordDeviation()      { m.deviations.Add(1) }

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsRouted:     m.eventsRouted.Load(),
		RoutesProposed:   m.routesProposed.Load(),
		RoutesFailed:     m.routesFailed.Load(),
		Reroutes:         m.reroutes.Load(),
		TrafficRefreshes: m.trafficRefreshes.Load(),
		Deviations:       m.deviations.Load(),
	}
}
