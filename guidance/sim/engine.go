// Package sim provides an in-process guidance engine double. It consumes
// positioning fixes, matches them against the bound route, and synthesizes
// the event stream a production engine would emit. It exists so the module
// runs and tests end to end without the closed-source engine.
package sim

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
	"github.com/turnwise/navkit/guidance"
)

const (
	// offRouteThresholdM is how far a fix may sit from the route before
	// deviation events are emitted instead of progress.
	offRouteThresholdM = 50.0

	// arrivalThresholdM is the remaining distance at which the
	// destination counts as reached.
	arrivalThresholdM = 25.0

	// announceThresholdM is the distance at which speech text for the
	// next maneuver is synthesized.
	announceThresholdM = 400.0
)

type vertex struct {
	pos     geo.Coordinates
	along   float64 // meters from route start
	section int
}

// Engine is a simulated guidance engine implementing guidance.Engine.
type Engine struct {
	mu      sync.Mutex
	handler guidance.EventHandler
	camera  guidance.CameraBehavior

	route         *route.Route
	vertices      []vertex
	maneuverAlong []float64
	totalM        float64
	avgSpeedMPS   float64
	lastOnRoute   geo.Location
	everOnRoute   bool
	lastSection   int
	lastAnnounced int
	arrived       bool
}

// New creates a simulated engine in tracking-only mode.
func New() *Engine {
	return &Engine{camera: guidance.CameraNone, lastAnnounced: -1}
}

// SetRoute binds a route for guidance, or nil for tracking-only mode.
func (e *Engine) SetRoute(r *route.Route) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.route = r
	e.vertices = nil
	e.maneuverAlong = nil
	e.totalM = 0
	e.avgSpeedMPS = 0
	e.everOnRoute = false
	e.lastSection = 0
	e.lastAnnounced = -1
	e.arrived = false

	if r == nil {
		return
	}

	along := 0.0
	for si, sec := range r.Sections {
		for gi, pos := range sec.Geometry {
			if len(e.vertices) > 0 && gi == 0 {
				// Section boundaries share a vertex; skip the duplicate.
				continue
			}
			if len(e.vertices) > 0 {
				along += e.vertices[len(e.vertices)-1].pos.DistanceTo(pos)
			}
			e.vertices = append(e.vertices, vertex{pos: pos, along: along, section: si})
		}
	}
	e.totalM = along

	if r.Duration > 0 {
		e.avgSpeedMPS = r.LengthM / r.Duration.Seconds()
	}

	e.maneuverAlong = make([]float64, len(r.Maneuvers))
	for i, m := range r.Maneuvers {
		proj := e.projectLocked(m.Coordinates)
		e.maneuverAlong[i] = proj.along
	}
}

// SetCameraBehavior installs the given camera behavior.
func (e *Engine) SetCameraBehavior(behavior guidance.CameraBehavior) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.camera = behavior
}

// CameraBehavior returns the currently installed behavior.
func (e *Engine) CameraBehavior() guidance.CameraBehavior {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.camera
}

// SetEventHandler registers the single event stream consumer.
func (e *Engine) SetEventHandler(h guidance.EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = h
}

// HasRoute reports whether a route is bound (false means tracking-only).
func (e *Engine) HasRoute() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.route != nil
}

// OnLocationUpdated is the engine's location-listener slot. Each fix is
// matched against the bound route and translated into guidance events.
func (e *Engine) OnLocationUpdated(loc geo.Location) {
	e.mu.Lock()
	events := e.consumeLocked(loc)
	handler := e.handler
	e.mu.Unlock()

	if handler == nil {
		return
	}
	for _, ev := range events {
		handler(ev)
	}
}

type projection struct {
	along   float64
	offsetM float64
	section int
}

// consumeLocked turns one fix into the guidance events it implies.
func (e *Engine) consumeLocked(loc geo.Location) []guidance.Event {
	if e.route == nil || len(e.vertices) < 2 || e.arrived {
		return nil
	}

	proj := e.projectLocked(loc.Coordinates)

	if proj.offsetM > offRouteThresholdM {
		return []guidance.Event{guidance.Deviation{
			Location:     loc,
			LastOnRoute:  e.lastOnRoute,
			OnRouteValid: e.everOnRoute,
		}}
	}

	matched := loc
	matched.RoadSnapped = true
	e.lastOnRoute = matched
	e.everOnRoute = true

	var events []guidance.Event

	if proj.section > e.lastSection {
		// Crossed into a new section: the waypoint between them is
		// reached. Sections are user-waypoint legs in this double.
		events = append(events, guidance.Milestone{
			Reached:       true,
			WaypointIndex: proj.section,
			Coordinates:   matched.Coordinates,
		})
	}
	e.lastSection = proj.section

	remainingM := e.totalM - proj.along
	if remainingM <= arrivalThresholdM {
		e.arrived = true
		events = append(events, guidance.DestinationReached{Location: matched})
		return events
	}

	progress := e.progressLocked(matched, proj, remainingM)
	events = append(events, progress)

	if text, ok := e.announceLocked(progress); ok {
		events = append(events, text)
	}

	return events
}

func (e *Engine) progressLocked(matched geo.Location, proj projection, remainingM float64) guidance.Progress {
	var maneuvers []guidance.ManeuverProgress
	for i, m := range e.route.Maneuvers {
		ahead := e.maneuverAlong[i] - proj.along
		if ahead < 0 {
			continue
		}
		mp := guidance.ManeuverProgress{
			Maneuver:   m,
			RemainingM: ahead,
		}
		if e.avgSpeedMPS > 0 {
			mp.RemainingDuration = time.Duration(ahead / e.avgSpeedMPS * float64(time.Second))
		}
		maneuvers = append(maneuvers, mp)
	}

	sections := make([]route.SectionProgress, 0, len(e.route.Sections)-proj.section)
	traveledOnSection := proj.along - e.sectionStartLocked(proj.section)
	for si := proj.section; si < len(e.route.Sections); si++ {
		sec := e.route.Sections[si]
		remaining := sec.LengthM
		if si == proj.section {
			remaining = math.Max(0, sec.LengthM-traveledOnSection)
		}
		sp := route.SectionProgress{SectionIndex: si, RemainingM: remaining}
		if e.avgSpeedMPS > 0 {
			sp.RemainingDuration = time.Duration(remaining / e.avgSpeedMPS * float64(time.Second))
		}
		sections = append(sections, sp)
	}

	return guidance.Progress{
		Maneuvers:          maneuvers,
		Sections:           sections,
		SectionIndex:       proj.section,
		TraveledOnSectionM: traveledOnSection,
		Location:           matched,
	}
}

// announceLocked synthesizes speech text once per maneuver when the
// vehicle gets close.
func (e *Engine) announceLocked(p guidance.Progress) (guidance.EventText, bool) {
	if len(p.Maneuvers) == 0 {
		return guidance.EventText{}, false
	}
	next := p.Maneuvers[0]
	if next.RemainingM > announceThresholdM || next.Maneuver.Index == e.lastAnnounced {
		return guidance.EventText{}, false
	}
	e.lastAnnounced = next.Maneuver.Index

	m := next.Maneuver
	return guidance.EventText{
		Text:     fmt.Sprintf("In %.0f meters, %s.", next.RemainingM, spokenAction(m.Action)),
		Maneuver: &m,
	}, true
}

func (e *Engine) sectionStartLocked(section int) float64 {
	for _, v := range e.vertices {
		if v.section == section {
			return v.along
		}
	}
	return 0
}

// projectLocked finds the nearest point on the route polyline using a
// local planar approximation, returning the along-route distance and the
// offset from the route.
func (e *Engine) projectLocked(p geo.Coordinates) projection {
	best := projection{offsetM: math.MaxFloat64}

	for i := 0; i < len(e.vertices)-1; i++ {
		a, b := e.vertices[i], e.vertices[i+1]
		t, dist := projectOntoSegment(p, a.pos, b.pos)
		if dist < best.offsetM {
			segLen := b.along - a.along
			best = projection{
				along:   a.along + segLen*t,
				offsetM: dist,
				section: a.section,
			}
		}
	}
	return best
}

// projectOntoSegment projects p onto segment a-b in a local equirectangular
// plane, returning the clamped parameter t and the distance in meters.
func projectOntoSegment(p, a, b geo.Coordinates) (float64, float64) {
	scale := math.Cos(a.Latitude * math.Pi / 180)
	ax, ay := a.Longitude*scale, a.Latitude
	bx, by := b.Longitude*scale, b.Latitude
	px, py := p.Longitude*scale, p.Latitude

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy

	t := 0.0
	if lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}

	nearest := geo.Coordinates{
		Latitude:  a.Latitude + (b.Latitude-a.Latitude)*t,
		Longitude: a.Longitude + (b.Longitude-a.Longitude)*t,
	}
	return t, p.DistanceTo(nearest)
}

func spokenAction(a route.Action) string {
	switch a {
	case route.ActionDepart:
		return "depart"
	case route.ActionArrive:
		return "you will arrive at your destination"
	case route.ActionContinue:
		return "continue straight"
	case route.ActionTurnLeft:
		return "turn left"
	case route.ActionTurnRight:
		return "turn right"
	case route.ActionKeepLeft:
		return "keep left"
	case route.ActionKeepRight:
		return "keep right"
	case route.ActionUTurn:
		return "make a U-turn"
	case route.ActionRoundaboutEnter:
		return "enter the roundabout"
	case route.ActionRoundaboutExit:
		return "exit the roundabout"
	default:
		return "continue"
	}
}
