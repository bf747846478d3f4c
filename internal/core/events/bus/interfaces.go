package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus for world lifecycle
// notifications (entities spawned, terminated).
//
//   - Type-based fan-out: handlers subscribe by Event.Type().
//   - Synchronous delivery: Publish runs handlers in the caller goroutine.
//   - Error aggregation: handler errors are joined and returned from Publish.
//
// Handlers run on whatever goroutine publishes, often an entity goroutine, so
// they must be quick and must not call back into the publishing entity.
type EventBus interface {
	// Publish delivers the event to every subscriber of event.Type().
	Publish(event Event) error
	// PublishAsync publishes in a separate goroutine; the returned channel
	// receives the joined error (or nil) and is then closed.
	PublishAsync(event Event) <-chan error
	// Subscribe registers a handler for an event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error
	// Subscribers returns the number of active subscriptions for eventType.
	Subscribers(eventType string) int
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type EventHandler func(event Event) error

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}
