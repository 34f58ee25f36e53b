package sink

import (
	"context"
	"meet-lab/domain/event"
	"meet-lab/domain/meeting"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubscriberSink_CoalescesWakeUps(t *testing.T) {
	req := require.New(t)
	sink := NewSubscriberSink()

	// When several events arrive before the reader wakes up
	for i := 0; i < 3; i++ {
		req.NoError(sink.Consume(context.Background(), event.ParticipantJoined{Meeting: "K3F9QZ1B"}))
	}

	// Then a single wake-up is pending
	<-sink.Wake()
	select {
	case <-sink.Wake():
		req.Fail("wake-ups should be coalesced")
	default:
	}
}

func TestSubscriberSink_ClosedOnMeetingEnded(t *testing.T) {
	req := require.New(t)
	sink := NewSubscriberSink()

	req.NoError(sink.Consume(context.Background(), event.MeetingEnded{Meeting: "K3F9QZ1B"}))
	sink.Close()

	select {
	case <-sink.Done():
	default:
		req.Fail("sink should be done")
	}
}

func TestSubscriberSink_Reason(t *testing.T) {
	req := require.New(t)

	ended := NewSubscriberSink()
	req.Empty(ended.Reason())
	req.NoError(ended.Consume(context.Background(), event.MeetingEnded{Meeting: "K3F9QZ1B"}))
	// a later close keeps the first reason
	ended.Close()
	req.Equal(ReasonEnded, ended.Reason())

	closed := NewSubscriberSink()
	closed.Close()
	req.Equal(ReasonClosed, closed.Reason())
}

func TestParticipantSink_ReleasedWhenParticipantLeaves(t *testing.T) {
	req := require.New(t)
	sink := NewParticipantSink("Bob")

	// Given another participant leaves, the reader is only woken up
	req.NoError(sink.Consume(context.Background(), event.ParticipantLeft{
		Meeting: "K3F9QZ1B", Participant: meeting.Participant{Name: "Carol"},
	}))
	<-sink.Wake()
	req.Empty(sink.Reason())

	// When Bob leaves, whatever the case of his name
	req.NoError(sink.Consume(context.Background(), event.ParticipantLeft{
		Meeting: "K3F9QZ1B", Participant: meeting.Participant{Name: "bob"},
	}))

	// Then the subscription is released
	select {
	case <-sink.Done():
	default:
		req.Fail("sink should be done")
	}
	req.Equal(ReasonLeft, sink.Reason())
}
