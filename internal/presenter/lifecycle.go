package presenter

import "sync"

// Event is a host lifecycle signal.
type Event int

const (
	// EventResume fires whenever the screen becomes active again, including
	// the first time it is shown.
	EventResume Event = iota
	// EventPause fires when the screen stops being active.
	EventPause
)

func (e Event) String() string {
	switch e {
	case EventResume:
		return "resume"
	case EventPause:
		return "pause"
	}
	return "unknown"
}

// Host delivers lifecycle events to subscribers, synchronously and in
// subscription order.
type Host struct {
	mu        sync.Mutex
	nextID    int
	observers map[int]func(Event)
	order     []int
}

// NewHost creates a host with no subscribers.
func NewHost() *Host {
	return &Host{observers: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it.
func (h *Host) Subscribe(fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.observers[id] = fn
	h.order = append(h.order, id)

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.observers, id)
	}
}

// Emit calls every current subscriber with e.
func (h *Host) Emit(e Event) {
	h.mu.Lock()
	fns := make([]func(Event), 0, len(h.observers))
	live := h.order[:0]
	for _, id := range h.order {
		if fn, ok := h.observers[id]; ok {
			fns = append(fns, fn)
			live = append(live, id)
		}
	}
	h.order = live
	h.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}
