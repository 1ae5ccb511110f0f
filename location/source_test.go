package location_test

import (
	"sync"
	"testing"
	"time"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
	"github.com/turnwise/navkit/location"
)

type fixRecorder struct {
	mu    sync.Mutex
	fixes []geo.Location
}

func (r *fixRecorder) OnLocationUpdated(loc geo.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixes = append(r.fixes, loc)
}

func (r *fixRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fixes)
}

func (r *fixRecorder) last() (geo.Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.fixes) == 0 {
		return geo.Location{}, false
	}
	return r.fixes[len(r.fixes)-1], true
}

func TestDeviceSource_RelaysFixes(t *testing.T) {
	provider := location.NewManualProvider()
	rec := &fixRecorder{}

	var statuses []location.Status
	src := location.NewDeviceSource(provider, rec, location.AccuracyNavigation, func(st location.Status) {
		statuses = append(statuses, st)
	})

	if src.Active() {
		t.Error("source active before Start")
	}
	if err := src.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !src.Active() {
		t.Error("source inactive after Start")
	}

	fix := geo.Location{Coordinates: geo.NewCoordinates(52.52, 13.41), Timestamp: time.Now()}
	provider.Push(fix)

	if rec.count() != 1 {
		t.Fatalf("listener received %d fixes, want 1", rec.count())
	}
	if got, _ := rec.last(); got.Coordinates != fix.Coordinates {
		t.Errorf("relayed fix = %v, want %v", got.Coordinates, fix.Coordinates)
	}
	if len(statuses) != 1 || statuses[0] != location.StatusAvailable {
		t.Errorf("statuses = %v, want [available]", statuses)
	}
}

func TestDeviceSource_StartIdempotent(t *testing.T) {
	provider := location.NewManualProvider()
	rec := &fixRecorder{}
	src := location.NewDeviceSource(provider, rec, location.AccuracyNavigation, nil)

	if err := src.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := src.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}

	provider.Push(geo.Location{Coordinates: geo.NewCoordinates(52.52, 13.41)})
	if rec.count() != 1 {
		t.Errorf("listener received %d fixes, want 1 (double Start must not double-subscribe)", rec.count())
	}
}

func TestDeviceSource_StopSilences(t *testing.T) {
	provider := location.NewManualProvider()
	rec := &fixRecorder{}
	src := location.NewDeviceSource(provider, rec, location.AccuracyNavigation, nil)

	if err := src.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	src.Stop()
	if src.Active() {
		t.Error("source still active after Stop")
	}

	provider.Push(geo.Location{Coordinates: geo.NewCoordinates(52.52, 13.41)})
	if rec.count() != 0 {
		t.Errorf("listener received %d fixes after Stop, want 0", rec.count())
	}

	// Stopping again must be a no-op.
	src.Stop()
}

func TestDeviceSource_Restartable(t *testing.T) {
	provider := location.NewManualProvider()
	rec := &fixRecorder{}
	src := location.NewDeviceSource(provider, rec, location.AccuracyBalanced, nil)

	if err := src.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	src.Stop()
	if err := src.Start(); err != nil {
		t.Fatalf("restart error = %v", err)
	}

	provider.Push(geo.Location{Coordinates: geo.NewCoordinates(52.52, 13.41)})
	if rec.count() != 1 {
		t.Errorf("listener received %d fixes after restart, want 1", rec.count())
	}
}

func TestManualProvider_LastKnown(t *testing.T) {
	provider := location.NewManualProvider()

	if _, ok := provider.LastKnown(); ok {
		t.Error("LastKnown() reported a fix before any Push")
	}

	fix := geo.Location{Coordinates: geo.NewCoordinates(52.52, 13.41)}
	provider.Push(fix)

	got, ok := provider.LastKnown()
	if !ok || got.Coordinates != fix.Coordinates {
		t.Errorf("LastKnown() = (%v, %v), want pushed fix", got.Coordinates, ok)
	}
}

func replayRoute() *route.Route {
	// Roughly 1.1 km east along a parallel, one section, 60 s nominal.
	return route.New(
		[]route.Section{
			{
				Geometry: []geo.Coordinates{
					geo.NewCoordinates(52.52, 13.40),
					geo.NewCoordinates(52.52, 13.408),
					geo.NewCoordinates(52.52, 13.416),
				},
				LengthM:  1088,
				Duration: time.Minute,
			},
		},
		[]route.Maneuver{
			{Index: 0, Action: route.ActionDepart},
			{Index: 1, Action: route.ActionArrive},
		},
	)
}

func TestSimulatedSource_ReplaysAndFinishes(t *testing.T) {
	rec := &fixRecorder{}
	src := location.NewSimulatedSource(replayRoute(), rec, location.SimulatedConfig{
		SpeedFactor:          20, // finish in a few ticks
		NotificationInterval: 5 * time.Millisecond,
	})

	if err := src.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer src.Stop()

	deadline := time.After(5 * time.Second)
	for rec.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("received %d fixes before deadline, want at least 3", rec.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	last, _ := rec.last()
	if !last.SpeedValid || last.SpeedMPS <= 0 {
		t.Errorf("synthetic fix speed = (%v, %v), want positive valid speed", last.SpeedMPS, last.SpeedValid)
	}
	if !last.BearingValid {
		t.Error("synthetic fix missing bearing")
	}

	start := geo.NewCoordinates(52.52, 13.40)
	if last.Coordinates.DistanceTo(start) == 0 {
		t.Error("replay did not advance from route start")
	}
}

func TestSimulatedSource_StopIsSynchronous(t *testing.T) {
	rec := &fixRecorder{}
	src := location.NewSimulatedSource(replayRoute(), rec, location.SimulatedConfig{
		SpeedFactor:          2,
		NotificationInterval: time.Millisecond,
	})

	if err := src.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Let a few fixes through, then stop and assert silence.
	time.Sleep(20 * time.Millisecond)
	src.Stop()
	if src.Active() {
		t.Error("source still active after Stop")
	}

	n := rec.count()
	time.Sleep(20 * time.Millisecond)
	if rec.count() != n {
		t.Errorf("fixes delivered after Stop returned: %d -> %d", n, rec.count())
	}

	// Idempotent.
	src.Stop()
}

func TestSimulatedSource_StartIdempotent(t *testing.T) {
	rec := &fixRecorder{}
	src := location.NewSimulatedSource(replayRoute(), rec, location.SimulatedConfig{
		NotificationInterval: time.Hour, // never ticks during the test
	})

	if err := src.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := src.Start(); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if !src.Active() {
		t.Error("source inactive after Start")
	}
	src.Stop()
}

func TestDefaultSimulatedConfig(t *testing.T) {
	cfg := location.DefaultSimulatedConfig()
	if cfg.SpeedFactor != 2.0 {
		t.Errorf("SpeedFactor = %v, want 2.0", cfg.SpeedFactor)
	}
	if cfg.NotificationInterval != 500*time.Millisecond {
		t.Errorf("NotificationInterval = %v, want 500ms", cfg.NotificationInterval)
	}
}

func TestSimulatedConfig_Merge(t *testing.T) {
	cfg := location.DefaultSimulatedConfig()
	cfg.Merge(&location.SimulatedConfig{SpeedFactor: 4})

	if cfg.SpeedFactor != 4 {
		t.Errorf("SpeedFactor = %v, want 4", cfg.SpeedFactor)
	}
	if cfg.NotificationInterval != 500*time.Millisecond {
		t.Errorf("NotificationInterval = %v, want default 500ms preserved", cfg.NotificationInterval)
	}
}
