package notify

import (
	"fmt"

	"github.com/turnwise/navkit/core/route"
	"github.com/turnwise/navkit/guidance"
)

const unnamedRoad = "unnamed road"

// FormatManeuver composes the feedback line for an upcoming maneuver:
// action phrase, road label, and remaining distance. The next road's label
// is announced except for arrivals, which use the current road; Road
// handles the highway number-over-name preference.
func FormatManeuver(mp guidance.ManeuverProgress) string {
	m := mp.Maneuver

	road := m.NextRoad
	if m.Action == route.ActionArrive {
		road = m.CurrentRoad
	}
	label, ok := road.DisplayName()
	if !ok {
		label = unnamedRoad
	}

	return fmt.Sprintf("%s %s in %s", actionPhrase(m.Action), label, FormatDistance(mp.RemainingM))
}

// FormatDistance renders a distance for announcement: meters below one
// kilometer, otherwise kilometers with one decimal.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

func actionPhrase(a route.Action) string {
	switch a {
	case route.ActionDepart:
		return "Depart via"
	case route.ActionArrive:
		return "Arrive at"
	case route.ActionContinue:
		return "Continue on"
	case route.ActionTurnLeft:
		return "Turn left onto"
	case route.ActionTurnRight:
		return "Turn right onto"
	case route.ActionKeepLeft:
		return "Keep left towards"
	case route.ActionKeepRight:
		return "Keep right towards"
	case route.ActionUTurn:
		return "Make a U-turn onto"
	case route.ActionRoundaboutEnter:
		return "Enter the roundabout towards"
	case route.ActionRoundaboutExit:
		return "Exit the roundabout onto"
	default:
		return "Head towards"
	}
}

func formatMilestone(m guidance.Milestone) string {
	outcome := "reached"
	if !m.Reached {
		outcome = "missed"
	}
	if m.UserDefined() {
		return fmt.Sprintf("Waypoint %d %s", m.WaypointIndex, outcome)
	}
	return fmt.Sprintf("Stopover %s at %s", outcome, m.Coordinates)
}

func formatWarningStatus(s guidance.WarningStatus) string {
	switch s {
	case guidance.WarningAhead:
		return "ahead"
	case guidance.WarningReached:
		return "reached"
	case guidance.WarningPassed:
		return "passed"
	default:
		return string(s)
	}
}
