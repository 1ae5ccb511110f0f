// Package geo provides the geographic value types shared across the
// navigation stack: coordinates, located fixes, and waypoints.
package geo

import (
	"fmt"
	"math"
	"time"
)

const earthRadiusMeters = 6371000.0

// Coordinates is an immutable latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinates creates a Coordinates value.
func NewCoordinates(lat, lon float64) Coordinates {
	return Coordinates{Latitude: lat, Longitude: lon}
}

// Valid reports whether the coordinates lie within the WGS84 domain.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// DistanceTo returns the great-circle distance to other in meters.
func (c Coordinates) DistanceTo(other Coordinates) float64 {
	lat1 := c.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := (other.Latitude - c.Latitude) * math.Pi / 180
	dLon := (other.Longitude - c.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BearingTo returns the initial great-circle bearing to other in degrees
// from north, normalized to [0, 360).
func (c Coordinates) BearingTo(other Coordinates) float64 {
	lat1 := c.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLon := (other.Longitude - c.Longitude) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	bearing := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// Interpolate returns the point at fraction t along the straight segment
// from c to other. t is clamped to [0, 1].
func (c Coordinates) Interpolate(other Coordinates, t float64) Coordinates {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return other
	}
	return Coordinates{
		Latitude:  c.Latitude + (other.Latitude-c.Latitude)*t,
		Longitude: c.Longitude + (other.Longitude-c.Longitude)*t,
	}
}

func (c Coordinates) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Latitude, c.Longitude)
}

// Location is a single positioning fix: a coordinate plus the optional
// motion attributes a provider may attach. A zero BearingValid (or
// SpeedValid) means the corresponding field carries no information.
type Location struct {
	Coordinates  Coordinates `json:"coordinates"`
	BearingDeg   float64     `json:"bearing_deg,omitempty"`
	BearingValid bool        `json:"bearing_valid,omitempty"`
	SpeedMPS     float64     `json:"speed_mps,omitempty"`
	SpeedValid   bool        `json:"speed_valid,omitempty"`
	AccuracyM    float64     `json:"accuracy_m,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	RoadSnapped  bool        `json:"road_snapped,omitempty"`
}
