package location

import (
	"fmt"
	"sync"

	"github.com/turnwise/navkit/core/geo"
)

// Provider is the platform positioning facility the device source relays
// from. Implementations are external; tests use an in-process fake.
type Provider interface {
	// Subscribe starts fix delivery at the requested accuracy and returns
	// a cancel function. Cancel must not return until delivery has ceased.
	Subscribe(accuracy Accuracy, onFix func(geo.Location), onStatus StatusFunc) (cancel func(), err error)

	// LastKnown returns the most recent fix, if any exists.
	LastKnown() (geo.Location, bool)
}

// DeviceSource relays live device fixes and positioning status events to
// its listener.
type DeviceSource struct {
	provider Provider
	listener Listener
	accuracy Accuracy
	onStatus StatusFunc

	mu     sync.Mutex
	cancel func()
}

// NewDeviceSource creates a device source that relays fixes from provider
// to listener at the given accuracy. onStatus may be nil.
func NewDeviceSource(provider Provider, listener Listener, accuracy Accuracy, onStatus StatusFunc) *DeviceSource {
	return &DeviceSource{
		provider: provider,
		listener: listener,
		accuracy: accuracy,
		onStatus: onStatus,
	}
}

// Start subscribes to the provider. Starting an already-started source is
// a no-op.
func (s *DeviceSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return nil
	}

	cancel, err := s.provider.Subscribe(s.accuracy, s.listener.OnLocationUpdated, s.status)
	if err != nil {
		return fmt.Errorf("subscribe device positioning: %w", err)
	}
	s.cancel = cancel
	return nil
}

// Stop cancels the provider subscription. Stopping an inactive source is a
// no-op. Stop returns only after fix delivery has ceased.
func (s *DeviceSource) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Active reports whether the source currently holds a subscription.
func (s *DeviceSource) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// LastKnown returns the provider's most recent fix, if any.
func (s *DeviceSource) LastKnown() (geo.Location, bool) {
	return s.provider.LastKnown()
}

func (s *DeviceSource) status(st Status) {
	if s.onStatus != nil {
		s.onStatus(st)
	}
}
