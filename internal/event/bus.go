package event

import (
	"fmt"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/Iron-Ham/nightfall/internal/logging"
)

// Handler is a function that handles an event.
type Handler func(Event)

type subscription struct {
	id string
	// eventType is empty for subscribers to every event.
	eventType string
	handler   Handler
}

// Bus is a synchronous pub-sub event bus. The engine publishes on it; the
// presenter and the command layer subscribe.
//
// Handlers run on the publishing goroutine in the order they subscribed,
// whatever type they subscribed to.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger *logging.Logger
}

// NewBus creates a new event bus. Handler panics are reported to logger;
// nil discards them.
func NewBus(logger *logging.Logger) *Bus {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Bus{logger: logger}
}

// Subscribe registers a handler for one event type and returns an ID for
// Unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := fmt.Sprintf("sub-%d", b.nextID)
	b.subs = append(b.subs, subscription{id: id, eventType: eventType, handler: handler})
	return id
}

// SubscribeAll registers a handler for every event.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe("", handler)
}

// Unsubscribe removes a subscription and reports whether it existed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.subs, func(s subscription) bool { return s.id == id })
	if i < 0 {
		return false
	}
	// Publishers may still be iterating the old slice.
	b.subs = slices.Delete(slices.Clone(b.subs), i, i+1)
	return true
}

// Publish delivers e to every matching handler. A panicking handler is
// logged and the rest still run.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, s := range subs {
		if s.eventType == "" || s.eventType == e.EventType() {
			b.safeCall(s.handler, e)
		}
	}
}

func (b *Bus) safeCall(handler Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event", e.EventType(), "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()
	handler(e)
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
