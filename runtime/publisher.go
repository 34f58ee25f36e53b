package runtime

import (
	"meet-lab/domain/event"
)

// Publisher receives domain events while the emitting meeting is still locked,
// so events of one meeting are published in mutation order.
// Implementations must return in bounded time.
type Publisher interface {
	Publish(evt event.DomainEvent)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(evt event.DomainEvent)

func (f PublisherFunc) Publish(evt event.DomainEvent) { f(evt) }

// Discard drops every event. It is used when nothing consumes the pipeline.
var Discard Publisher = PublisherFunc(func(event.DomainEvent) {})
