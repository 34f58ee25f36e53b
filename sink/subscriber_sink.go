package sink

import (
	"context"
	"meet-lab/domain/event"
	"meet-lab/domain/meeting"
	"sync"
)

// Why a subscription was released.
const (
	ReasonClosed = "closed"
	ReasonEnded  = "ended"
	ReasonLeft   = "left"
)

// SubscriberSink wakes up one live transcript reader.
// It carries no payload: the reader pulls from the caption log, so a missed
// wake-up never creates a gap, it only delays the next read.
type SubscriberSink struct {
	wake        chan struct{}
	done        chan struct{}
	once        sync.Once
	reason      string
	participant string
}

func NewSubscriberSink() *SubscriberSink {
	return &SubscriberSink{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// NewParticipantSink is released as soon as the named participant leaves the meeting.
func NewParticipantSink(name string) *SubscriberSink {
	s := NewSubscriberSink()
	s.participant = meeting.NameKey(name)
	return s
}

func (s *SubscriberSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MeetingEnded:
		s.closeWith(ReasonEnded)
		return nil
	case event.ParticipantLeft:
		if s.participant != "" && meeting.NameKey(evt.Participant.Name) == s.participant {
			s.closeWith(ReasonLeft)
			return nil
		}
	}
	select {
	case s.wake <- struct{}{}:
	default:
		// a wake-up is already pending
	}
	return nil
}

// Wake fires when the meeting changed since the last receive.
func (s *SubscriberSink) Wake() <-chan struct{} { return s.wake }

// Done is closed when the subscription is released or the meeting ended.
func (s *SubscriberSink) Done() <-chan struct{} { return s.done }

// Reason is empty until Done is closed.
func (s *SubscriberSink) Reason() string {
	select {
	case <-s.done:
		return s.reason
	default:
		return ""
	}
}

func (s *SubscriberSink) Close() {
	s.closeWith(ReasonClosed)
}

func (s *SubscriberSink) closeWith(reason string) {
	s.once.Do(func() {
		s.reason = reason
		close(s.done)
	})
}
