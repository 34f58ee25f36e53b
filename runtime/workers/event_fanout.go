package workers

import (
	"context"
	"fmt"
	"log/slog"
	"meet-lab/contract"
	"meet-lab/domain/event"
	"meet-lab/errors"
	"time"
)

// EventFanout delivers domain events to the permanent sinks (persistence, index)
// and to the live subscriptions of the event's meeting.
//
// Events are consumed one at a time in queue order. Permanent sinks are always
// awaited, so storage never skips or reorders an event; a slow one only delays the
// queue. Subscription sinks exceeding sinkTimeout are abandoned for that event.
type EventFanout struct {
	log            *slog.Logger
	permanentSinks []contract.EventSink
	registry       contract.ISubscriptionRegistry
	queue          *EventQueue
	sinkTimeout    time.Duration
}

func NewEventFanout(log *slog.Logger, permanentSinks []contract.EventSink,
	registry contract.ISubscriptionRegistry, queue *EventQueue,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:            log,
		permanentSinks: permanentSinks,
		registry:       registry,
		queue:          queue,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		// an event already queued is delivered even if a stop is in progress
		for {
			evt, ok := w.queue.Pop()
			if !ok {
				break
			}
			w.Fanout(context.WithoutCancel(ctx), evt)
		}
		select {
		case <-w.queue.Ready():
		case <-ctx.Done():
			w.Drain()
			w.log.Debug("Context done, event fanout stopped")
			return nil
		}
	}
}

// Drain flushes the queued events so a graceful stop persists them.
func (w *EventFanout) Drain() {
	count := 0
	for {
		evt, ok := w.queue.Pop()
		if !ok {
			break
		}
		w.Fanout(context.Background(), evt)
		count++
	}
	if count > 0 {
		w.log.Info("Pending events flushed", "count", count)
	}
}

// Fanout hands one event to every sink concerned.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.permanentSinks {
		w.await(ctx, sink, evt)
	}

	var subscribers []contract.EventSink
	if _, ended := evt.(event.MeetingEnded); ended {
		subscribers = w.registry.Drop(evt.MeetingID())
	} else {
		subscribers = w.registry.GetSinksForMeeting(evt.MeetingID())
	}
	for _, sink := range subscribers {
		if err := w.consume(ctx, sink, evt); err != nil {
			w.log.Debug("Subscriber sink failed", "sink", fmt.Sprintf("%T", sink), "meeting_id", evt.MeetingID(), "error", err)
		}
	}
}

// await blocks until a permanent sink returned, warning when it is slower than sinkTimeout.
func (w *EventFanout) await(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	start := time.Now()
	err := sink.Consume(ctx, evt)
	if elapsed := time.Since(start); elapsed > w.sinkTimeout {
		w.log.Warn("Slow permanent sink", "sink", fmt.Sprintf("%T", sink), "meeting_id", evt.MeetingID(), "elapsed", elapsed)
	}
	if err != nil {
		w.log.Error("Permanent sink failed", "sink", fmt.Sprintf("%T", sink), "meeting_id", evt.MeetingID(),
			"event", fmt.Sprintf("%T", evt), "error", err)
	}
}

// consume gives a subscription sink sinkTimeout to accept evt.
func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) error {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sink.Consume(sinkCtx, evt) }()

	select {
	case err := <-done:
		return err
	case <-sinkCtx.Done():
		return fmt.Errorf("%w after %s", errors.ErrSinkTimeout, w.sinkTimeout)
	}
}
