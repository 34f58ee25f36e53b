package runtime

import (
	"context"
	"meet-lab/contract"
	"meet-lab/domain/event"
	"meet-lab/domain/meeting"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s Sink) Consume(context.Context, event.DomainEvent) error {
	return nil
}

func TestSubscriptionRegistry_Subscribe_One_Meeting_Multiple_Subscriptions(t *testing.T) {
	req := require.New(t)
	registry := NewSubscriptionRegistry()
	sub1, sub2 := uuid.NewString(), uuid.NewString()
	meetingID := meeting.MeetingID("K3F9QZ1B")
	sink1, sink2 := Sink{name: "1"}, Sink{name: "2"}

	// Given no subscription exists
	req.Empty(registry.GetSinksForMeeting(meetingID))

	// When two listeners subscribe
	registry.Subscribe(sub1, meetingID, sink1)
	registry.Subscribe(sub2, meetingID, sink2)

	// Then both sinks are returned
	req.Equal(2, registry.Count())
	req.ElementsMatch([]Sink{sink1, sink2}, toSinks(registry.GetSinksForMeeting(meetingID)))
	req.Empty(registry.GetSinksForMeeting("OTHER001"))
}

func TestSubscriptionRegistry_Unsubscribe(t *testing.T) {
	req := require.New(t)
	registry := NewSubscriptionRegistry()
	subID := uuid.NewString()
	meetingID := meeting.MeetingID("K3F9QZ1B")

	registry.Subscribe(subID, meetingID, Sink{})
	registry.Unsubscribe(subID, meetingID)

	req.Equal(0, registry.Count())
	req.Nil(registry.GetSinksForMeeting(meetingID))
	req.Empty(registry.meetingMembers)
}

func TestSubscriptionRegistry_Drop(t *testing.T) {
	req := require.New(t)
	registry := NewSubscriptionRegistry()
	meetingID := meeting.MeetingID("K3F9QZ1B")
	registry.Subscribe(uuid.NewString(), meetingID, Sink{name: "1"})
	registry.Subscribe(uuid.NewString(), meetingID, Sink{name: "2"})
	registry.Subscribe(uuid.NewString(), "OTHER001", Sink{name: "3"})

	// When the meeting is dropped
	dropped := registry.Drop(meetingID)

	// Then its subscriptions are returned and removed, others are kept
	req.Len(dropped, 2)
	req.Equal(1, registry.Count())
	req.Nil(registry.GetSinksForMeeting(meetingID))
	req.Nil(registry.Drop(meetingID))
}

func toSinks(sinks []contract.EventSink) []Sink {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		out = append(out, s.(Sink))
	}
	return out
}
