package location

import (
	"sync"
	"time"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/core/route"
)

// SimulatedSource replays a route's geometry as synthetic fixes. Each tick
// advances along the geometry at the section's nominal speed scaled by the
// configured factor and delivers one interpolated fix to the listener.
// Replay ends at the route's final point; the source stays started until
// Stop so the terminal fix ordering matches the device source contract.
type SimulatedSource struct {
	route    *route.Route
	listener Listener
	cfg      SimulatedConfig

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSimulatedSource creates a replay source for the given route. Zero
// config fields fall back to defaults (2x speed, 500 ms cadence).
func NewSimulatedSource(r *route.Route, listener Listener, cfg SimulatedConfig) *SimulatedSource {
	defaults := DefaultSimulatedConfig()
	defaults.Merge(&cfg)

	return &SimulatedSource{
		route:    r,
		listener: listener,
		cfg:      defaults,
	}
}

// Start begins replay. Starting an already-started source is a no-op.
func (s *SimulatedSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.replay(s.stop, s.done)
	return nil
}

// Stop halts replay. Stopping an inactive source is a no-op. Stop returns
// only after the replay goroutine has exited, so no fix is delivered after
// Stop returns.
func (s *SimulatedSource) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Active reports whether replay is currently started.
func (s *SimulatedSource) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

type replayCursor struct {
	section  int
	segment  int
	traveled float64 // meters into the current segment
}

func (s *SimulatedSource) replay(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.NotificationInterval)
	defer ticker.Stop()

	cursor := replayCursor{}
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fix, ok := s.advance(&cursor)
			if !ok {
				return
			}
			s.listener.OnLocationUpdated(fix)
		}
	}
}

// advance moves the cursor one notification interval forward and returns
// the interpolated fix. ok is false once the route end has been passed.
func (s *SimulatedSource) advance(c *replayCursor) (geo.Location, bool) {
	for c.section < len(s.route.Sections) {
		sec := s.route.Sections[c.section]
		speed := sectionSpeedMPS(sec)
		step := speed * s.cfg.SpeedFactor * s.cfg.NotificationInterval.Seconds()

		for c.segment < len(sec.Geometry)-1 {
			from := sec.Geometry[c.segment]
			to := sec.Geometry[c.segment+1]
			segLen := from.DistanceTo(to)

			if c.traveled+step < segLen {
				c.traveled += step
				pos := from.Interpolate(to, c.traveled/segLen)
				return s.fix(pos, from.BearingTo(to), speed*s.cfg.SpeedFactor), true
			}

			step -= segLen - c.traveled
			c.traveled = 0
			c.segment++
		}

		c.segment = 0
		c.section++
	}

	return geo.Location{}, false
}

func (s *SimulatedSource) fix(pos geo.Coordinates, bearing, speed float64) geo.Location {
	return geo.Location{
		Coordinates:  pos,
		BearingDeg:   bearing,
		BearingValid: true,
		SpeedMPS:     speed,
		SpeedValid:   true,
		Timestamp:    time.Now(),
	}
}

// sectionSpeedMPS derives the section's nominal speed from its length and
// duration, with a walking-pace floor for degenerate sections.
func sectionSpeedMPS(sec route.Section) float64 {
	if sec.Duration <= 0 {
		return 1.4
	}
	speed := sec.LengthM / sec.Duration.Seconds()
	if speed < 1.4 {
		return 1.4
	}
	return speed
}
