package routing

import (
	"context"
	"time"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
)

const (
	// defaultSpeedMPS is the offline speed model, roughly 50 km/h.
	defaultSpeedMPS = 13.9

	// samplingStepM controls how densely section geometry is sampled.
	samplingStepM = 200.0
)

// OfflinePlanner computes great-circle routes between waypoints with a
// flat speed model. It has no road network and no traffic; it exists so the
// module runs end to end without a live routing backend and so tests have a
// deterministic planner.
type OfflinePlanner struct {
	// TrafficFactor scales durations in ComputeTrafficOverlay. 1.0 means
	// free flow; zero falls back to 1.0.
	TrafficFactor float64
}

// NewOfflinePlanner creates an OfflinePlanner with free-flow traffic.
func NewOfflinePlanner() *OfflinePlanner {
	return &OfflinePlanner{TrafficFactor: 1.0}
}

// ComputeRoute builds one section per waypoint pair with geometry sampled
// along the straight segment, plus depart/continue/arrive maneuvers.
func (p *OfflinePlanner) ComputeRoute(ctx context.Context, waypoints []geo.Waypoint, opts Options) (*route.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(waypoints) < 2 {
		return nil, NewError(CodeInvalidWaypoints, "need at least 2 waypoints, got %d", len(waypoints))
	}
	for i, wp := range waypoints {
		if !wp.Coordinates.Valid() {
			return nil, NewError(CodeInvalidWaypoints, "waypoint %d out of range: %s", i, wp.Coordinates)
		}
	}

	speed := opts.SpeedMPS
	if speed <= 0 {
		speed = defaultSpeedMPS
	}

	sections := make([]route.Section, 0, len(waypoints)-1)
	maneuvers := make([]route.Maneuver, 0, len(waypoints))

	for i := 0; i < len(waypoints)-1; i++ {
		from := waypoints[i].Coordinates
		to := waypoints[i+1].Coordinates
		length := from.DistanceTo(to)

		sections = append(sections, route.Section{
			Geometry: sampleSegment(from, to),
			LengthM:  length,
			Duration: time.Duration(length / speed * float64(time.Second)),
		})

		action := route.ActionContinue
		if i == 0 {
			action = route.ActionDepart
		}
		maneuvers = append(maneuvers, route.Maneuver{
			Index:       i,
			Action:      action,
			Coordinates: from,
		})
	}

	maneuvers = append(maneuvers, route.Maneuver{
		Index:       len(waypoints) - 1,
		Action:      route.ActionArrive,
		Coordinates: waypoints[len(waypoints)-1].Coordinates,
	})

	return route.New(sections, maneuvers), nil
}

// ComputeTrafficOverlay scales the remaining timings by TrafficFactor.
// Geometry and distances are untouched, matching the overlay contract.
func (p *OfflinePlanner) ComputeTrafficOverlay(ctx context.Context, r *route.Route, sectionIndex int, traveledOnSectionM float64) (*route.TrafficOverlay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r == nil || len(r.Sections) == 0 {
		return nil, NewError(CodeInvalidWaypoints, "no route to recompute")
	}
	if sectionIndex < 0 || sectionIndex >= len(r.Sections) {
		return nil, NewError(CodeInvalidWaypoints, "section index %d out of range", sectionIndex)
	}

	factor := p.TrafficFactor
	if factor <= 0 {
		factor = 1.0
	}

	durations := make([]time.Duration, len(r.Sections))
	for i, sec := range r.Sections {
		durations[i] = sec.Duration
		if i >= sectionIndex {
			durations[i] = time.Duration(float64(sec.Duration) * factor)
		}
	}

	return &route.TrafficOverlay{
		RouteHandle:      r.Handle,
		SectionDurations: durations,
		ComputedAt:       time.Now(),
	}, nil
}

// sampleSegment returns the straight segment from a to b including both
// endpoints, with intermediate points roughly every samplingStepM.
func sampleSegment(a, b geo.Coordinates) []geo.Coordinates {
	length := a.DistanceTo(b)
	steps := int(length / samplingStepM)
	if steps < 1 {
		return []geo.Coordinates{a, b}
	}

	points := make([]geo.Coordinates, 0, steps+2)
	points = append(points, a)
	for i := 1; i <= steps; i++ {
		points = append(points, a.Interpolate(b, float64(i)/float64(steps+1)))
	}
	return append(points, b)
}
