// Package route holds the routing artifacts the orchestrator consumes: the
// Route aggregate with its section geometries and timings, maneuvers, and
// traffic overlays. The orchestrator treats route geometry as immutable;
// applying a traffic overlay changes durations only.
package route

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/turnwise/navkit/core/geo"
)

// ErrOverlayMismatch is returned when an overlay's section count does not
// match the route it is applied to.
var ErrOverlayMismatch = errors.New("traffic overlay does not match route sections")

// Section is one leg of a route between consecutive waypoints.
type Section struct {
	Geometry []geo.Coordinates `json:"geometry"`
	LengthM  float64           `json:"length_m"`
	Duration time.Duration     `json:"duration"`
}

// Route is the engine-provided routing artifact. The orchestrator reads its
// sections, totals, and maneuvers, and keeps the Handle for traffic
// recomputation requests; it never edits geometry.
type Route struct {
	// Handle is an opaque identifier usable for traffic recomputation
	// against the planner that produced the route.
	Handle    string        `json:"handle"`
	Sections  []Section     `json:"sections"`
	Maneuvers []Maneuver    `json:"maneuvers"`
	LengthM   float64       `json:"length_m"`
	Duration  time.Duration `json:"duration"`
}

// New assembles a Route from sections and maneuvers, computing totals and
// assigning a fresh handle.
func New(sections []Section, maneuvers []Maneuver) *Route {
	r := &Route{
		Handle:    uuid.Must(uuid.NewV7()).String(),
		Sections:  sections,
		Maneuvers: maneuvers,
	}
	for _, s := range sections {
		r.LengthM += s.LengthM
		r.Duration += s.Duration
	}
	return r
}

// Departure returns the route's first geometry point. Used as the deviation
// fallback when the vehicle never followed the route.
func (r *Route) Departure() (geo.Coordinates, bool) {
	if len(r.Sections) == 0 || len(r.Sections[0].Geometry) == 0 {
		return geo.Coordinates{}, false
	}
	return r.Sections[0].Geometry[0], true
}

// Destination returns the route's last geometry point.
func (r *Route) Destination() (geo.Coordinates, bool) {
	if len(r.Sections) == 0 {
		return geo.Coordinates{}, false
	}
	last := r.Sections[len(r.Sections)-1]
	if len(last.Geometry) == 0 {
		return geo.Coordinates{}, false
	}
	return last.Geometry[len(last.Geometry)-1], true
}

// ApplyTrafficOverlay replaces section durations with the overlay's updated
// timings and recomputes the route total. Geometry and length are invariant
// under this operation.
func (r *Route) ApplyTrafficOverlay(overlay *TrafficOverlay) error {
	if overlay == nil || len(overlay.SectionDurations) != len(r.Sections) {
		return ErrOverlayMismatch
	}

	total := time.Duration(0)
	for i := range r.Sections {
		r.Sections[i].Duration = overlay.SectionDurations[i]
		total += overlay.SectionDurations[i]
	}
	r.Duration = total
	return nil
}

// Summary renders the route totals as a human-readable line for the
// confirmation dialog.
func (r *Route) Summary() string {
	return fmt.Sprintf("%.1f km, %s", r.LengthM/1000, r.Duration.Round(time.Second))
}

// TrafficOverlay carries updated per-section timings for an existing route.
// Applying an overlay never alters geometry or distance.
type TrafficOverlay struct {
	RouteHandle      string          `json:"route_handle"`
	SectionDurations []time.Duration `json:"section_durations"`
	ComputedAt       time.Time       `json:"computed_at"`
}

// SectionProgress is the remaining distance and duration on one route
// section, as reported by the guidance engine.
type SectionProgress struct {
	SectionIndex      int           `json:"section_index"`
	RemainingM        float64       `json:"remaining_m"`
	RemainingDuration time.Duration `json:"remaining_duration"`
}
