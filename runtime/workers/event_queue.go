package workers

import (
	"meet-lab/domain/event"
	"sync"
)

// EventQueue is an unbounded FIFO of domain events. Push never blocks, so it can be
// called while a meeting lock is held; the single consumer pops in push order.
type EventQueue struct {
	mu     sync.Mutex
	items  []event.DomainEvent
	ready  chan struct{}
	warnAt int
}

// NewEventQueue preallocates capacity events.
func NewEventQueue(capacity int) *EventQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &EventQueue{
		items:  make([]event.DomainEvent, 0, capacity),
		ready:  make(chan struct{}, 1),
		warnAt: capacity,
	}
}

// Push appends evt and returns the backlog length. The boolean is true the first
// time the backlog reaches the initial capacity, then twice that, and so on.
func (q *EventQueue) Push(evt event.DomainEvent) (int, bool) {
	q.mu.Lock()
	q.items = append(q.items, evt)
	backlog := len(q.items)
	grown := false
	if backlog >= q.warnAt {
		q.warnAt *= 2
		grown = true
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return backlog, grown
}

// Pop removes the oldest event.
func (q *EventQueue) Pop() (event.DomainEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	evt := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return evt, true
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready is signaled after a Push. A single signal may cover several events.
func (q *EventQueue) Ready() <-chan struct{} {
	return q.ready
}
