// Package store holds the mutable field values of a single form session.
package store

import (
	"reflect"
	"sync"
)

// ChangeFunc observes a single key mutation. A nil value with deleted=true
// means the key was removed.
type ChangeFunc func(key string, value any, deleted bool)

// Store is the key-value mapping every evaluator reads and the action system
// mutates. One instance exists per form session; writes are last-write-wins.
// Writing a value equal to the current one is a no-op and does not notify
// subscribers, which is the guard the resetOn feedback loop relies on.
type Store struct {
	mu      sync.RWMutex
	values  map[string]any
	initial map[string]any
	subs    map[int]ChangeFunc
	nextSub int
}

// New constructs a store seeded from initial. The seed is copied; the caller
// keeps ownership of its map.
func New(initial map[string]any) *Store {
	s := &Store{
		values:  make(map[string]any, len(initial)),
		initial: make(map[string]any, len(initial)),
		subs:    make(map[int]ChangeFunc),
	}
	for key, value := range initial {
		s.values[key] = value
		s.initial[key] = value
	}
	return s
}

// Get returns the current value for key, nil when absent.
func (s *Store) Get(key string) any {
	value, _ := s.Lookup(key)
	return value
}

// Lookup returns the current value for key and whether it is present.
func (s *Store) Lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

// Set assigns a value. Equal writes are dropped silently.
func (s *Store) Set(key string, value any) {
	if key == "" {
		return
	}
	s.mu.Lock()
	current, exists := s.values[key]
	if exists && reflect.DeepEqual(current, value) {
		s.mu.Unlock()
		return
	}
	s.values[key] = value
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(key, value, false)
	}
}

// Delete removes a key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	if _, exists := s.values[key]; !exists {
		s.mu.Unlock()
		return
	}
	delete(s.values, key)
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(key, nil, true)
	}
}

// Snapshot returns a shallow copy of all current values.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for key, value := range s.values {
		out[key] = value
	}
	return out
}

// Reset restores the store to its initial values. Subscribers are notified
// once per key that actually changed.
func (s *Store) Reset() {
	s.mu.RLock()
	initial := make(map[string]any, len(s.initial))
	for key, value := range s.initial {
		initial[key] = value
	}
	current := make(map[string]any, len(s.values))
	for key, value := range s.values {
		current[key] = value
	}
	s.mu.RUnlock()

	for key := range current {
		if _, keep := initial[key]; !keep {
			s.Delete(key)
		}
	}
	for key, value := range initial {
		s.Set(key, value)
	}
}

// Subscribe registers a change observer and returns its unsubscribe func.
func (s *Store) Subscribe(fn ChangeFunc) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// snapshotSubs must be called with mu held.
func (s *Store) snapshotSubs() []ChangeFunc {
	if len(s.subs) == 0 {
		return nil
	}
	out := make([]ChangeFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

// Patch is a deferred store mutation produced by an evaluation pass and
// applied after the pass completes (two-phase evaluate/commit).
type Patch struct {
	Key    string
	Value  any
	Delete bool
}

// Apply commits a batch of patches in order.
func Apply(s *Store, patches []Patch) {
	if s == nil {
		return
	}
	for _, p := range patches {
		if p.Key == "" {
			continue
		}
		if p.Delete {
			s.Delete(p.Key)
			continue
		}
		s.Set(p.Key, p.Value)
	}
}
