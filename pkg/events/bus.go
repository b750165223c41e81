// Package events provides an in-process publish-subscribe event bus.
package events

import (
	"sync"
	"time"
)

// Event is a named notification with an arbitrary payload.
type Event struct {
	Name      string
	Timestamp time.Time
	Payload   interface{}
}

// Publisher is the narrow interface event producers depend on. Delivery is
// fire-and-forget; producers never block on slow consumers.
type Publisher interface {
	Emit(event Event)
}

// Handler is a function invoked for matching events.
type Handler func(event Event)

// Bus is a channel-based Publisher implementation.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
	handlers    map[string][]Handler
	bufferSize  int
	closed      bool
}

// Option configures the Bus.
type Option func(*Bus)

// WithBufferSize sets the subscriber channel buffer size.
func WithBufferSize(size int) Option {
	return func(b *Bus) {
		b.bufferSize = size
	}
}

// NewBus creates a new event bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subscribers: make(map[string][]chan Event),
		handlers:    make(map[string][]Handler),
		bufferSize:  100,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscribe creates a channel that receives events with the given name.
// Subscribe("*") receives every event.
func (b *Bus) Subscribe(name string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	b.subscribers[name] = append(b.subscribers[name], ch)
	return ch
}

// On registers a handler invoked asynchronously for events with the given
// name.
func (b *Bus) On(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[name] = append(b.handlers[name], handler)
}

// Emit publishes an event to all subscribers and handlers. Sends to full
// subscriber channels are dropped rather than blocking the producer.
func (b *Bus) Emit(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, ch := range b.subscribers[event.Name] {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
	for _, ch := range b.subscribers["*"] {
		select {
		case ch <- event:
		default:
		}
	}

	for _, handler := range b.handlers[event.Name] {
		go handler(event)
	}
	for _, handler := range b.handlers["*"] {
		go handler(event)
	}
}

// Close closes all subscriber channels and stops the bus. Emits after Close
// are silently discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}

	b.subscribers = make(map[string][]chan Event)
	b.handlers = make(map[string][]Handler)
}
