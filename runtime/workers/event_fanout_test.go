package workers

import (
	"context"
	"log/slog"
	"meet-lab/contract"
	"meet-lab/domain/event"
	"meet-lab/domain/meeting"
	"meet-lab/errors"
	"meet-lab/mocks"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanout_Fanout(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := mocks.NewMockISubscriptionRegistry(ctrl)
	permanent := mocks.NewMockEventSink(ctrl)
	subscriber := mocks.NewMockEventSink(ctrl)

	fanout := NewEventFanout(log, []contract.EventSink{permanent}, registry, NewEventQueue(1), time.Second)
	evt := event.CaptionAppended{Caption: meeting.CaptionEvent{MeetingID: "K3F9QZ1B", Seq: 1}}

	// Given one subscriber on the meeting
	registry.EXPECT().GetSinksForMeeting(meeting.MeetingID("K3F9QZ1B")).Return([]contract.EventSink{subscriber})
	// Then the permanent sink and the subscriber consume the event, in that order
	gomock.InOrder(
		permanent.EXPECT().Consume(gomock.Any(), evt).Return(nil),
		subscriber.EXPECT().Consume(gomock.Any(), evt).Return(nil),
	)

	// When the event is fanned out
	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_MeetingEnded_DropsSubscriptions(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := mocks.NewMockISubscriptionRegistry(ctrl)
	subscriber := mocks.NewMockEventSink(ctrl)

	fanout := NewEventFanout(log, nil, registry, NewEventQueue(1), time.Second)
	evt := event.MeetingEnded{Meeting: "K3F9QZ1B", LastSeq: 3, Reason: event.EndedByHost}

	registry.EXPECT().Drop(meeting.MeetingID("K3F9QZ1B")).Return([]contract.EventSink{subscriber})
	subscriber.EXPECT().Consume(gomock.Any(), evt).Return(nil)

	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_SubscriberTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := mocks.NewMockISubscriptionRegistry(ctrl)
	slow := mocks.NewMockEventSink(ctrl)

	sinkTimeout := 20 * time.Millisecond
	fanout := NewEventFanout(log, nil, registry, NewEventQueue(1), sinkTimeout)
	evt := event.ParticipantJoined{Meeting: "K3F9QZ1B"}

	// Given a subscriber blocking until its context is canceled
	registry.EXPECT().GetSinksForMeeting(gomock.Any()).Return([]contract.EventSink{slow})
	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt event.DomainEvent) error {
			<-ctx.Done()
			return ctx.Err()
		}).
		Times(2)

	// When it is handed an event
	start := time.Now()
	err := fanout.consume(context.Background(), slow, evt)

	// Then the fanout gave up on it after the timeout
	req.ErrorIs(err, errors.ErrSinkTimeout)
	req.Less(time.Since(start), 500*time.Millisecond)

	// And the fanout itself does not wait for it either
	start = time.Now()
	fanout.Fanout(context.Background(), evt)
	req.Less(time.Since(start), 500*time.Millisecond)
	// Let the abandoned goroutine observe the cancellation
	time.Sleep(50 * time.Millisecond)
}

func TestEventFanout_PermanentSink_IsAwaited(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := mocks.NewMockISubscriptionRegistry(ctrl)
	slow := mocks.NewMockEventSink(ctrl)

	fanout := NewEventFanout(log, []contract.EventSink{slow}, registry, NewEventQueue(1), 10*time.Millisecond)

	// Given a permanent sink three times slower than the timeout
	stored := false
	registry.EXPECT().GetSinksForMeeting(gomock.Any()).Return(nil)
	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt event.DomainEvent) error {
			time.Sleep(30 * time.Millisecond)
			stored = ctx.Err() == nil
			return nil
		})

	// When an event is fanned out
	fanout.Fanout(context.Background(), event.ParticipantJoined{Meeting: "K3F9QZ1B"})

	// Then the sink completed with a live context before Fanout returned
	req.True(stored)
}

func TestEventFanout_Run_DrainsOnStop(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	registry := mocks.NewMockISubscriptionRegistry(ctrl)
	permanent := mocks.NewMockEventSink(ctrl)

	queue := NewEventQueue(1)
	for seq := uint64(1); seq <= 3; seq++ {
		queue.Push(event.CaptionAppended{Caption: meeting.CaptionEvent{MeetingID: "K3F9QZ1B", Seq: seq}})
	}
	fanout := NewEventFanout(log, []contract.EventSink{permanent}, registry, queue, time.Second)

	registry.EXPECT().GetSinksForMeeting(gomock.Any()).Return(nil).Times(3)
	var seqs []uint64
	permanent.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, evt event.DomainEvent) error {
			seqs = append(seqs, evt.(event.CaptionAppended).Caption.Seq)
			return nil
		}).
		Times(3)

	// Given a canceled context, queued events are still delivered in order
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req.NoError(fanout.Run(ctx))
	req.Zero(queue.Len())
	req.Equal([]uint64{1, 2, 3}, seqs)
}
