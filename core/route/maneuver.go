package route

import "github.com/turnwise/navkit/core/geo"

// Action identifies the instructed movement of a maneuver.
type Action string

const (
	ActionDepart          Action = "depart"
	ActionArrive          Action = "arrive"
	ActionContinue        Action = "continue"
	ActionTurnLeft        Action = "turn_left"
	ActionTurnRight       Action = "turn_right"
	ActionKeepLeft        Action = "keep_left"
	ActionKeepRight       Action = "keep_right"
	ActionUTurn           Action = "u_turn"
	ActionRoundaboutEnter Action = "roundabout_enter"
	ActionRoundaboutExit  Action = "roundabout_exit"
)

// Road describes the road a maneuver relates to. Name and Number may both
// be empty for unnamed roads.
type Road struct {
	Name      string `json:"name,omitempty"`
	Number    string `json:"number,omitempty"`
	IsHighway bool   `json:"is_highway,omitempty"`
}

// DisplayName selects the label to announce for the road: the number is
// preferred on highways, the name everywhere else, with the other used as
// fallback when the preferred field is empty.
func (r Road) DisplayName() (string, bool) {
	primary, secondary := r.Name, r.Number
	if r.IsHighway {
		primary, secondary = r.Number, r.Name
	}
	if primary != "" {
		return primary, true
	}
	if secondary != "" {
		return secondary, true
	}
	return "", false
}

// Maneuver is one instructed action in a route's instruction sequence.
// Index is the maneuver's position in that sequence and is stable for the
// lifetime of the route.
type Maneuver struct {
	Index       int             `json:"index"`
	Action      Action          `json:"action"`
	Coordinates geo.Coordinates `json:"coordinates"`
	CurrentRoad Road            `json:"current_road"`
	NextRoad    Road            `json:"next_road"`
}
