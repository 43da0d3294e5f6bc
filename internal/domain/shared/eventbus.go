package shared

import "context"

// EventPublisher is the port application services use to emit domain
// events after a successful commit.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler consumes domain events. EventTypes narrows delivery to
// the listed types; an empty slice subscribes the handler to every
// event.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventBus wires publishers to handlers. Subscribe without explicit
// types falls back to the handler's own EventTypes declaration.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
