package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(ProfileChangedEvent{...})
func (b *Bus) Publish(ev Event) {
	// Use type switch to call the generic Publish with the correct type
	switch e := ev.(type) {
	case ProfileChangedEvent:
		event.Publish(b.dispatcher, e)
	case IndicatorsChangedEvent:
		event.Publish(b.dispatcher, e)
	case BatteryStateChangedEvent:
		event.Publish(b.dispatcher, e)
	case KeycodeStateChangedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function
// The handler type determines which events it receives (type inference)
// Returns an unsubscribe function
// Usage: unsub := bus.Subscribe(func(e ProfileChangedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(ProfileChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(IndicatorsChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(BatteryStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(KeycodeStateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// Return a no-op function if handler type is not recognized
		return func() {}
	}
}
