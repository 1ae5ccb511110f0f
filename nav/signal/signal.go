// Package signal provides a minimal single-value observable: setting a new
// value supersedes the previous one, and subscribers always see the latest.
// The navigation session publishes its dialog state and camera tracking
// flag through these.
package signal

import "sync"

// Value holds the latest published value of type T and notifies
// subscribers on every Set. Notification happens synchronously on the
// setter's goroutine, in subscription order.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	set     bool
	nextID  int
	subs    map[int]func(T)
}

// NewValue creates an empty observable value.
func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[int]func(T))}
}

// Set publishes a new value, superseding the previous one, and notifies
// all subscribers.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.current = val
	v.set = true
	subs := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		subs = append(subs, fn)
	}
	v.mu.Unlock()

	for _, fn := range subs {
		fn(val)
	}
}

// Get returns the latest value and whether one has been published.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.set
}

// Subscribe registers fn for future values and returns a cancel function.
// If a value has already been published, fn is invoked immediately with it.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	current, set := v.current, v.set
	v.mu.Unlock()

	if set {
		fn(current)
	}

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		delete(v.subs, id)
	}
}
