package actions

import (
	"sort"
	"sync"
)

// Signal names emitted by the built-in modal actions.
const (
	SignalOpenModal  = "openModal"
	SignalCloseModal = "closeModal"
)

// Signal is a named event emitted by the action system and consumed by an
// external collaborator (the modal host, for the built-in pair). The action
// system never touches component state directly; this is the decoupling
// boundary between actions and the rendering layer.
type Signal struct {
	Name   string
	Target string
	Sender string
	Args   map[string]any
}

// SignalFunc observes emitted signals.
type SignalFunc func(Signal)

// SignalHub fans signals out to subscribers. Emission is synchronous and in
// subscription order.
type SignalHub struct {
	mu      sync.RWMutex
	subs    map[int]SignalFunc
	nextSub int
}

// NewSignalHub constructs a hub.
func NewSignalHub() *SignalHub {
	return &SignalHub{subs: make(map[int]SignalFunc)}
}

// Subscribe registers an observer and returns its unsubscribe func.
func (h *SignalHub) Subscribe(fn SignalFunc) func() {
	if fn == nil {
		return func() {}
	}
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Emit delivers a signal to every subscriber, oldest subscription first.
func (h *SignalHub) Emit(sig Signal) {
	h.mu.RLock()
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]SignalFunc, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, h.subs[id])
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(sig)
	}
}
