package geo

import "math/rand/v2"

// RandomWindowDeg bounds the fallback waypoint sampling window around the
// map center, per axis.
const RandomWindowDeg = 0.02

// Waypoint is a route endpoint: a coordinate plus an optional heading.
// Waypoints are immutable once created and replaced wholesale on
// re-selection.
type Waypoint struct {
	Coordinates  Coordinates `json:"coordinates"`
	HeadingDeg   float64     `json:"heading_deg,omitempty"`
	HeadingValid bool        `json:"heading_valid,omitempty"`
	// PreRouted marks a waypoint created before route computation so the
	// planner can keep a handle to it for later reroute requests.
	PreRouted bool `json:"pre_routed,omitempty"`
}

// NewWaypoint creates a Waypoint without heading information.
func NewWaypoint(c Coordinates) Waypoint {
	return Waypoint{Coordinates: c}
}

// NewWaypointWithHeading creates a Waypoint carrying a heading in degrees
// from north.
func NewWaypointWithHeading(c Coordinates, headingDeg float64) Waypoint {
	return Waypoint{Coordinates: c, HeadingDeg: headingDeg, HeadingValid: true}
}

// WaypointFromLocation creates a Waypoint at the fix's coordinates,
// carrying the fix's bearing as heading when present.
func WaypointFromLocation(loc Location) Waypoint {
	if loc.BearingValid {
		return NewWaypointWithHeading(loc.Coordinates, loc.BearingDeg)
	}
	return NewWaypoint(loc.Coordinates)
}

// RandomWaypointNear samples a waypoint uniformly within ±RandomWindowDeg
// of center on each axis independently.
func RandomWaypointNear(center Coordinates) Waypoint {
	return NewWaypoint(Coordinates{
		Latitude:  center.Latitude + (rand.Float64()*2-1)*RandomWindowDeg,
		Longitude: center.Longitude + (rand.Float64()*2-1)*RandomWindowDeg,
	})
}
