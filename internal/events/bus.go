package events

import (
	"sync"
	"time"
)

// Handler receives events from the bus
type Handler func(Event)

// Bus provides event distribution across components.
// Events are delivered to handlers in emit order on a single goroutine.
type Bus struct {
	Capacity int

	mu       sync.RWMutex // guards closed
	hmu      sync.RWMutex // guards handlers
	handlers []Handler
	events   chan Event
	closed   bool
	done     chan struct{}
	now      func() time.Time
}

// NewBus creates a new event bus with the specified capacity
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 1
	}
	b := &Bus{
		Capacity: capacity,
		events:   make(chan Event, capacity),
		done:     make(chan struct{}),
		now:      time.Now,
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for all subsequent events
func (b *Bus) Subscribe(h Handler) {
	b.hmu.Lock()
	defer b.hmu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Emit stamps the event time and queues it for delivery.
// Events emitted after Close are discarded.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	if e.Time.IsZero() {
		e.Time = b.now()
	}
	b.events <- e
}

// Close stops accepting events and waits until queued events are delivered
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return nil
	}
	b.closed = true
	close(b.events)
	b.mu.Unlock()

	<-b.done
	return nil
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for e := range b.events {
		b.hmu.RLock()
		handlers := append([]Handler(nil), b.handlers...)
		b.hmu.RUnlock()
		for _, h := range handlers {
			h(e)
		}
	}
}
