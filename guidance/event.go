package guidance

import (
	"time"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
)

// Kind tags the variants of the guidance event union.
type Kind string

const (
	KindProgress           Kind = "progress"
	KindDestinationReached Kind = "destination_reached"
	KindMilestone          Kind = "milestone"
	KindDeviation          Kind = "deviation"
	KindSpeedWarning       Kind = "speed_warning"
	KindLaneAssistance     Kind = "lane_assistance"
	KindRoadAttributes     Kind = "road_attributes"
	KindZoneWarning        Kind = "zone_warning"
	KindRestriction        Kind = "restriction"
	KindTollStop           Kind = "toll_stop"
	KindEventText          Kind = "event_text"
)

// Event is the closed union of guidance engine events. Each variant is an
// immutable value snapshot delivered once per occurrence. The sealed
// interface keeps the union closed so consumers can type-switch
// exhaustively.
type Event interface {
	Kind() Kind
	isEvent()
}

// ManeuverProgress pairs an upcoming maneuver with the remaining distance
// and time to it.
type ManeuverProgress struct {
	Maneuver          route.Maneuver
	RemainingM        float64
	RemainingDuration time.Duration
}

// Progress carries route progress: a look-ahead list of upcoming maneuvers
// (nearest first, possibly empty), per-section remaining distance/duration,
// and the current map-matched position.
type Progress struct {
	Maneuvers          []ManeuverProgress
	Sections           []route.SectionProgress
	SectionIndex       int
	TraveledOnSectionM float64
	Location           geo.Location
}

func (Progress) Kind() Kind { return KindProgress }
func (Progress) isEvent()   {}

// DestinationReached is the terminal event for the active route.
type DestinationReached struct {
	Location geo.Location
}

func (DestinationReached) Kind() Kind { return KindDestinationReached }
func (DestinationReached) isEvent()   {}

// Milestone reports a reached or missed checkpoint. User-defined waypoints
// carry a non-negative WaypointIndex; engine-injected waypoints have
// WaypointIndex -1 and are identified by their map-matched coordinates.
type Milestone struct {
	Reached       bool
	WaypointIndex int
	Coordinates   geo.Coordinates
}

// UserDefined reports whether the milestone is a user-defined waypoint.
func (m Milestone) UserDefined() bool { return m.WaypointIndex >= 0 }

func (Milestone) Kind() Kind { return KindMilestone }
func (Milestone) isEvent()   {}

// Deviation reports that the vehicle left the route. Location is the
// current map-matched position when available, the raw fix otherwise.
// LastOnRoute is the last known on-route position; OnRouteValid is false
// when the vehicle never followed the route.
type Deviation struct {
	Location     geo.Location
	LastOnRoute  geo.Location
	OnRouteValid bool
}

func (Deviation) Kind() Kind { return KindDeviation }
func (Deviation) isEvent()   {}

// SpeedWarningStatus indicates whether the vehicle entered or left the
// speeding range for the current limit.
type SpeedWarningStatus string

const (
	SpeedWarningExceeded SpeedWarningStatus = "exceeded"
	SpeedWarningCleared  SpeedWarningStatus = "cleared"
)

// SpeedWarning reports a change of speeding status against the current
// speed limit in meters per second.
type SpeedWarning struct {
	Status   SpeedWarningStatus
	LimitMPS float64
}

func (SpeedWarning) Kind() Kind { return KindSpeedWarning }
func (SpeedWarning) isEvent()   {}

// LaneDirection flags the directions a lane continues in.
type LaneDirection struct {
	Straight bool
	Left     bool
	Right    bool
}

// Lane describes one lane and whether it is on the route.
type Lane struct {
	Direction LaneDirection
	OnRoute   bool
}

// LaneAssistance lists the lanes ahead, leftmost first.
type LaneAssistance struct {
	Lanes []Lane
}

func (LaneAssistance) Kind() Kind { return KindLaneAssistance }
func (LaneAssistance) isEvent()   {}

// RoadAttributes reports attribute flags of the current road segment.
type RoadAttributes struct {
	IsBridge     bool
	IsTunnel     bool
	IsDirtRoad   bool
	IsTollway    bool
	IsRightDrive bool
}

func (RoadAttributes) Kind() Kind { return KindRoadAttributes }
func (RoadAttributes) isEvent()   {}

// ZoneType identifies the category of a warning zone.
type ZoneType string

const (
	ZoneSchool      ZoneType = "school"
	ZoneEnvironment ZoneType = "environment"
	ZoneDanger      ZoneType = "danger"
)

// WarningStatus indicates whether the vehicle is entering or leaving the
// warned area.
type WarningStatus string

const (
	WarningAhead   WarningStatus = "ahead"
	WarningReached WarningStatus = "reached"
	WarningPassed  WarningStatus = "passed"
)

// ZoneWarning reports a category zone ahead, reached, or passed.
type ZoneWarning struct {
	Zone   ZoneType
	Status WarningStatus
}

func (ZoneWarning) Kind() Kind { return KindZoneWarning }
func (ZoneWarning) isEvent()   {}

// Restriction reports a vehicle restriction on the road ahead (for example
// a weight or height limit).
type Restriction struct {
	Description string
	Status      WarningStatus
}

func (Restriction) Kind() Kind { return KindRestriction }
func (Restriction) isEvent()   {}

// TollStop reports an upcoming toll station.
type TollStop struct {
	Name   string
	Status WarningStatus
}

func (TollStop) Kind() Kind { return KindTollStop }
func (TollStop) isEvent()   {}

// EventText carries speech-grade text composed by the engine. The attached
// maneuver, when present, is informational only; the text is forwarded
// verbatim to the speech channel.
type EventText struct {
	Text     string
	Maneuver *route.Maneuver
}

func (EventText) Kind() Kind { return KindEventText }
func (EventText) isEvent()   {}
