package sink

import (
	"context"
	"fmt"
	"log/slog"
	"meet-lab/domain/event"
	"meet-lab/domain/meeting"
	"meet-lab/mocks"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDiskSink_Consume(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMeetingRepository(ctrl)
	sink := NewDiskSink(repository, log)

	at := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	m := meeting.Meeting{ID: "K3F9QZ1B", HostName: "Alice", CreatedAt: at, State: meeting.StateActive}
	host := meeting.Participant{Name: "Alice", IsHost: true, JoinedAt: at}
	bob := meeting.Participant{Name: "Bob", JoinedAt: at, Position: 1}
	caption := meeting.CaptionEvent{MeetingID: m.ID, Seq: 1, Speaker: "Bob", Text: "hello", At: at}

	gomock.InOrder(
		repository.EXPECT().SaveMeeting(m).Return(nil),
		repository.EXPECT().SaveParticipant(m.ID, host).Return(nil),
		repository.EXPECT().SaveParticipant(m.ID, bob).Return(nil),
		repository.EXPECT().StoreCaption(caption).Return(nil),
		repository.EXPECT().DeleteParticipant(m.ID, "Bob").Return(nil),
		repository.EXPECT().DeleteMeeting(m.ID).Return(nil),
	)

	ctx := context.Background()
	req.NoError(sink.Consume(ctx, event.MeetingCreated{Meeting: m, Host: host}))
	req.NoError(sink.Consume(ctx, event.ParticipantJoined{Meeting: m.ID, Participant: bob}))
	req.NoError(sink.Consume(ctx, event.CaptionAppended{Caption: caption}))
	req.NoError(sink.Consume(ctx, event.ParticipantLeft{Meeting: m.ID, Participant: bob, At: at}))
	req.NoError(sink.Consume(ctx, event.MeetingEnded{Meeting: m.ID, LastSeq: 1, Reason: event.EndedByHost}))
}

func TestDiskSink_Consume_Error(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIMeetingRepository(ctrl)
	sink := NewDiskSink(repository, log)

	// Given the store refuses the write
	boom := fmt.Errorf("disk full")
	repository.EXPECT().StoreCaption(gomock.Any()).Return(boom)

	err := sink.Consume(context.Background(), event.CaptionAppended{Caption: meeting.CaptionEvent{MeetingID: "K3F9QZ1B", Seq: 1}})

	// Then the error is reported to the fanout
	req.ErrorIs(err, boom)
}
