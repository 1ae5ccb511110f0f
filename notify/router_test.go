package notify_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
	"github.com/turnwise/navkit/guidance"
	"github.com/turnwise/navkit/notify"
)

func progressAt(index int, action route.Action, next route.Road, remainingM float64) guidance.Progress {
	return guidance.Progress{
		Maneuvers: []guidance.ManeuverProgress{
			{
				Maneuver: route.Maneuver{
					Index:    index,
					Action:   action,
					NextRoad: next,
				},
				RemainingM: remainingM,
			},
		},
	}
}

func newTestRouter(hooks notify.Hooks, cfg notify.Config) (*notify.Router, *notify.LatestText, *notify.SpeechQueue) {
	text := &notify.LatestText{}
	speech := &notify.SpeechQueue{}
	return notify.NewRouter(text, speech, nil, hooks, cfg), text, speech
}

func TestRouter_NewVersusUpdatePhrasing(t *testing.T) {
	router, text, _ := newTestRouter(notify.Hooks{}, notify.Config{})
	ctx := context.Background()
	road := route.Road{Name: "Invalidenstraße"}

	router.Route(ctx, progressAt(1, route.ActionTurnLeft, road, 500))
	first := text.Current()
	if !strings.HasPrefix(first, "New maneuver:") {
		t.Errorf("first delivery = %q, want 'New maneuver:' prefix", first)
	}

	// Same maneuver index again: phrasing switches to update.
	router.Route(ctx, progressAt(1, route.ActionTurnLeft, road, 350))
	second := text.Current()
	if !strings.HasPrefix(second, "Maneuver update:") {
		t.Errorf("second delivery = %q, want 'Maneuver update:' prefix", second)
	}
	if !strings.Contains(second, "350 m") {
		t.Errorf("second delivery = %q, want refreshed distance 350 m", second)
	}

	// A different index is a new maneuver again.
	router.Route(ctx, progressAt(2, route.ActionTurnRight, road, 900))
	third := text.Current()
	if !strings.HasPrefix(third, "New maneuver:") {
		t.Errorf("third delivery = %q, want 'New maneuver:' prefix", third)
	}
}

func TestRouter_SetActiveRouteResetsManeuverState(t *testing.T) {
	router, text, _ := newTestRouter(notify.Hooks{}, notify.Config{})
	ctx := context.Background()
	road := route.Road{Name: "Torstraße"}

	router.Route(ctx, progressAt(1, route.ActionTurnLeft, road, 500))
	router.SetActiveRoute(nil)

	// Same index after a route change must read as new again.
	router.Route(ctx, progressAt(1, route.ActionTurnLeft, road, 500))
	if got := text.Current(); !strings.HasPrefix(got, "New maneuver:") {
		t.Errorf("after route reset = %q, want 'New maneuver:' prefix", got)
	}
}

func TestRouter_ProgressHookAndEmptyLookahead(t *testing.T) {
	var hooked []guidance.Progress
	router, text, _ := newTestRouter(notify.Hooks{
		Progress: func(p guidance.Progress) { hooked = append(hooked, p) },
	}, notify.Config{})

	// No upcoming maneuvers: no text, but the hook still fires.
	router.Route(context.Background(), guidance.Progress{SectionIndex: 2, TraveledOnSectionM: 120})

	if got := text.Current(); got != "" {
		t.Errorf("text = %q, want empty for progress without maneuvers", got)
	}
	if len(hooked) != 1 || hooked[0].SectionIndex != 2 {
		t.Errorf("progress hook calls = %v, want one with section index 2", hooked)
	}
}

func TestRouter_DestinationReached(t *testing.T) {
	var reached int
	router, text, _ := newTestRouter(notify.Hooks{
		DestinationReached: func(guidance.DestinationReached) { reached++ },
	}, notify.Config{})

	router.Route(context.Background(), guidance.DestinationReached{})

	if got := text.Current(); got != "You have reached your destination" {
		t.Errorf("text = %q, want arrival line", got)
	}
	if reached != 1 {
		t.Errorf("destination hook fired %d times, want 1", reached)
	}
}

func TestRouter_DeviationDebounce(t *testing.T) {
	var distances []float64
	router, _, _ := newTestRouter(notify.Hooks{
		Deviation: func(d float64) { distances = append(distances, d) },
	}, notify.Config{DeviationDebounce: 3})

	ctx := context.Background()
	dev := guidance.Deviation{
		Location:     geo.Location{Coordinates: geo.NewCoordinates(52.530, 13.410)},
		LastOnRoute:  geo.Location{Coordinates: geo.NewCoordinates(52.520, 13.410)},
		OnRouteValid: true,
	}

	router.Route(ctx, dev)
	router.Route(ctx, dev)
	if len(distances) != 0 {
		t.Fatalf("deviation hook fired after %d events, want only at 3", 2)
	}

	router.Route(ctx, dev)
	if len(distances) != 1 {
		t.Fatalf("deviation hook fired %d times after 3 events, want 1", len(distances))
	}
	if distances[0] < 1000 || distances[0] > 1300 {
		t.Errorf("deviation distance = %.1f m, want about 1.1 km", distances[0])
	}

	// The streak restarts after firing.
	router.Route(ctx, dev)
	router.Route(ctx, dev)
	if len(distances) != 1 {
		t.Errorf("deviation hook fired %d times, want still 1 before next full streak", len(distances))
	}
	router.Route(ctx, dev)
	if len(distances) != 2 {
		t.Errorf("deviation hook fired %d times, want 2 after second full streak", len(distances))
	}
}

func TestRouter_DeviationStreakResetByProgress(t *testing.T) {
	var fired int
	router, _, _ := newTestRouter(notify.Hooks{
		Deviation: func(float64) { fired++ },
	}, notify.Config{DeviationDebounce: 3})

	ctx := context.Background()
	dev := guidance.Deviation{
		Location:     geo.Location{Coordinates: geo.NewCoordinates(52.530, 13.410)},
		LastOnRoute:  geo.Location{Coordinates: geo.NewCoordinates(52.520, 13.410)},
		OnRouteValid: true,
	}

	router.Route(ctx, dev)
	router.Route(ctx, dev)
	// On-route progress interrupts the streak.
	router.Route(ctx, guidance.Progress{})
	router.Route(ctx, dev)
	router.Route(ctx, dev)

	if fired != 0 {
		t.Errorf("deviation hook fired %d times, want 0 (streak interrupted)", fired)
	}
}

func TestRouter_DeviationFallsBackToDeparture(t *testing.T) {
	var distances []float64
	router, _, _ := newTestRouter(notify.Hooks{
		Deviation: func(d float64) { distances = append(distances, d) },
	}, notify.Config{DeviationDebounce: 1})

	active := route.New([]route.Section{
		{
			Geometry: []geo.Coordinates{
				geo.NewCoordinates(52.520, 13.410),
				geo.NewCoordinates(52.525, 13.415),
			},
			LengthM:  700,
			Duration: time.Minute,
		},
	}, nil)
	router.SetActiveRoute(active)

	// Vehicle never followed the route: reference is the departure point.
	router.Route(context.Background(), guidance.Deviation{
		Location: geo.Location{Coordinates: geo.NewCoordinates(52.530, 13.410)},
	})

	if len(distances) != 1 {
		t.Fatalf("deviation hook fired %d times, want 1", len(distances))
	}
	if distances[0] < 1000 || distances[0] > 1300 {
		t.Errorf("fallback distance = %.1f m, want about 1.1 km from departure", distances[0])
	}
}

func TestRouter_DeviationWithoutReferenceDropped(t *testing.T) {
	var fired int
	router, _, _ := newTestRouter(notify.Hooks{
		Deviation: func(float64) { fired++ },
	}, notify.Config{DeviationDebounce: 1})

	// No active route, no on-route history: nothing to measure against.
	router.Route(context.Background(), guidance.Deviation{
		Location: geo.Location{Coordinates: geo.NewCoordinates(52.530, 13.410)},
	})

	if fired != 0 {
		t.Errorf("deviation hook fired %d times without a reference, want 0", fired)
	}
}

func TestRouter_EventTextGoesToSpeech(t *testing.T) {
	router, text, speech := newTestRouter(notify.Hooks{}, notify.Config{})

	router.Route(context.Background(), guidance.EventText{Text: "In 400 meters, turn left"})

	if got := text.Current(); got != "" {
		t.Errorf("text sink = %q, want speech-grade text kept off the text channel", got)
	}
	got, ok := speech.Next()
	if !ok || got != "In 400 meters, turn left" {
		t.Errorf("speech = (%q, %v), want verbatim engine text", got, ok)
	}
}

func TestRouter_WarningsBecomeTextLines(t *testing.T) {
	tests := []struct {
		name string
		ev   guidance.Event
		want string
	}{
		{
			name: "speed exceeded",
			ev:   guidance.SpeedWarning{Status: guidance.SpeedWarningExceeded, LimitMPS: 13.889},
			want: "Speed limit exceeded (limit 50 km/h)",
		},
		{
			name: "speed cleared",
			ev:   guidance.SpeedWarning{Status: guidance.SpeedWarningCleared, LimitMPS: 13.889},
			want: "Speed back within limit (50 km/h)",
		},
		{
			name: "lane on route",
			ev: guidance.LaneAssistance{Lanes: []guidance.Lane{
				{OnRoute: false},
				{OnRoute: true, Direction: guidance.LaneDirection{Straight: true}},
				{OnRoute: false},
			}},
			want: "Use lane 2 of 3",
		},
		{
			name: "school zone",
			ev:   guidance.ZoneWarning{Zone: guidance.ZoneSchool, Status: guidance.WarningAhead},
			want: "school zone ahead",
		},
		{
			name: "tunnel",
			ev:   guidance.RoadAttributes{IsTunnel: true},
			want: "Entering a tunnel",
		},
		{
			name: "toll stop",
			ev:   guidance.TollStop{Name: "A10 Nord", Status: guidance.WarningReached},
			want: "Toll station A10 Nord reached",
		},
		{
			name: "restriction",
			ev:   guidance.Restriction{Description: "max height 3.5 m", Status: guidance.WarningAhead},
			want: "Restriction ahead: max height 3.5 m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, text, _ := newTestRouter(notify.Hooks{}, notify.Config{})
			router.Route(context.Background(), tt.ev)
			if got := text.Current(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRouter_Milestone(t *testing.T) {
	router, text, _ := newTestRouter(notify.Hooks{}, notify.Config{})
	ctx := context.Background()

	router.Route(ctx, guidance.Milestone{Reached: true, WaypointIndex: 2})
	if got := text.Current(); got != "Waypoint 2 reached" {
		t.Errorf("user milestone = %q, want %q", got, "Waypoint 2 reached")
	}

	router.Route(ctx, guidance.Milestone{
		Reached:       false,
		WaypointIndex: -1,
		Coordinates:   geo.NewCoordinates(52.52, 13.41),
	})
	if got := text.Current(); !strings.HasPrefix(got, "Stopover missed at ") {
		t.Errorf("engine milestone = %q, want 'Stopover missed at' prefix", got)
	}
}

func TestFormatManeuver_RoadSelection(t *testing.T) {
	tests := []struct {
		name string
		mp   guidance.ManeuverProgress
		want string
	}{
		{
			name: "turn announces next road",
			mp: guidance.ManeuverProgress{
				Maneuver: route.Maneuver{
					Action:      route.ActionTurnLeft,
					CurrentRoad: route.Road{Name: "Torstraße"},
					NextRoad:    route.Road{Name: "Invalidenstraße"},
				},
				RemainingM: 230,
			},
			want: "Turn left onto Invalidenstraße in 230 m",
		},
		{
			name: "arrival announces current road",
			mp: guidance.ManeuverProgress{
				Maneuver: route.Maneuver{
					Action:      route.ActionArrive,
					CurrentRoad: route.Road{Name: "Chausseestraße"},
					NextRoad:    route.Road{},
				},
				RemainingM: 80,
			},
			want: "Arrive at Chausseestraße in 80 m",
		},
		{
			name: "highway prefers number",
			mp: guidance.ManeuverProgress{
				Maneuver: route.Maneuver{
					Action:   route.ActionKeepRight,
					NextRoad: route.Road{Name: "Berliner Ring", Number: "A10", IsHighway: true},
				},
				RemainingM: 1550,
			},
			want: "Keep right towards A10 in 1.6 km",
		},
		{
			name: "nameless road falls back",
			mp: guidance.ManeuverProgress{
				Maneuver:   route.Maneuver{Action: route.ActionContinue},
				RemainingM: 400,
			},
			want: "Continue on unnamed road in 400 m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := notify.FormatManeuver(tt.mp); got != tt.want {
				t.Errorf("FormatManeuver() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters float64
		want   string
	}{
		{meters: 0, want: "0 m"},
		{meters: 999, want: "999 m"},
		{meters: 1000, want: "1.0 km"},
		{meters: 12345, want: "12.3 km"},
	}

	for _, tt := range tests {
		if got := notify.FormatDistance(tt.meters); got != tt.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", tt.meters, got, tt.want)
		}
	}
}

func TestLatestText_OverwriteSemantics(t *testing.T) {
	text := &notify.LatestText{}
	text.Publish("first")
	text.Publish("second")

	if got := text.Current(); got != "second" {
		t.Errorf("Current() = %q, want latest line only", got)
	}
}

func TestSpeechQueue_FlushOnNew(t *testing.T) {
	speech := &notify.SpeechQueue{}
	speech.Say("first")
	speech.Say("second")

	got, ok := speech.Next()
	if !ok || got != "second" {
		t.Errorf("Next() = (%q, %v), want newest message after flush", got, ok)
	}
	if _, ok := speech.Next(); ok {
		t.Error("Next() returned a second message, want queue drained")
	}
	if speech.Spoken() != 1 {
		t.Errorf("Spoken() = %d, want 1", speech.Spoken())
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := notify.DefaultConfig()
	if cfg.DeviationDebounce != 3 {
		t.Errorf("default DeviationDebounce = %d, want 3", cfg.DeviationDebounce)
	}

	cfg.Merge(&notify.Config{DeviationDebounce: 5})
	if cfg.DeviationDebounce != 5 {
		t.Errorf("merged DeviationDebounce = %d, want 5", cfg.DeviationDebounce)
	}

	cfg.Merge(&notify.Config{})
	if cfg.DeviationDebounce != 5 {
		t.Errorf("zero merge changed DeviationDebounce to %d, want 5 preserved", cfg.DeviationDebounce)
	}
}
