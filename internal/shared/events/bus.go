package events

import "sync"

// Handler receives published events. Handlers run synchronously on the
// publishing goroutine and must not call back into mutating operations
// of the component that published.
type Handler func(Event)

// Bus dispatches events to subscribers in subscription order. Delivery
// is synchronous, so events observe the order their causing operations
// were issued in.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]Handler
	order  []int
	nextID int
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]Handler)}
}

// Subscribe registers a handler and returns its unsubscribe function.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = h
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers an event to every subscriber. Publishing on a
// closed bus is a no-op.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		if h, ok := b.subs[id]; ok {
			handlers = append(handlers, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Close stops all further delivery. Used by dispose so nothing fires
// after the final Disposed event.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[int]Handler)
	b.order = nil
}
