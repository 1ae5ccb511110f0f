package location

import (
	"sync"

	"github.com/turnwise/navkit/core/geo"
)

// ManualProvider is an in-process positioning Provider fed by explicit
// Push calls. It backs tests and demo setups that have no device GPS.
type ManualProvider struct {
	mu       sync.Mutex
	last     *geo.Location
	onFix    func(geo.Location)
	onStatus StatusFunc
}

// NewManualProvider creates a provider with no initial fix.
func NewManualProvider() *ManualProvider {
	return &ManualProvider{}
}

// Subscribe implements Provider. Only one subscription is active at a
// time; a new Subscribe replaces the previous callback.
func (p *ManualProvider) Subscribe(accuracy Accuracy, onFix func(geo.Location), onStatus StatusFunc) (func(), error) {
	p.mu.Lock()
	p.onFix = onFix
	p.onStatus = onStatus
	p.mu.Unlock()

	if onStatus != nil {
		onStatus(StatusAvailable)
	}

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.onFix = nil
		p.onStatus = nil
	}, nil
}

// LastKnown implements Provider.
func (p *ManualProvider) LastKnown() (geo.Location, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return geo.Location{}, false
	}
	return *p.last, true
}

// Push records a fix and relays it to the active subscription, if any.
func (p *ManualProvider) Push(loc geo.Location) {
	p.mu.Lock()
	p.last = &loc
	onFix := p.onFix
	p.mu.Unlock()

	if onFix != nil {
		onFix(loc)
	}
}

// SetStatus relays a positioning status change to the active
// subscription, if any.
func (p *ManualProvider) SetStatus(st Status) {
	p.mu.Lock()
	onStatus := p.onStatus
	p.mu.Unlock()

	if onStatus != nil {
		onStatus(st)
	}
}
