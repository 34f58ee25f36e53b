package client

import (
	"context"
	"log/slog"
	"meet-lab/captioning"
	"meet-lab/domain/meeting"
	"meet-lab/errors"
	"meet-lab/infrastructure/http/api"
	"meet-lab/infrastructure/http/server"
	"meet-lab/runtime"
	"meet-lab/runtime/workers"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	subscriptions := runtime.NewSubscriptionRegistry()
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 0), subscriptions, 64, time.Second)
	coordinator := runtime.NewCoordinator(log, runtime.NewMeetingRegistry(nil), runtime.NewRandomIDGenerator(),
		orchestrator, runtime.CoordinatorConfig{Subscriptions: subscriptions})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		orchestrator.Start(ctx)
	}()
	srv := httptest.NewServer(server.NewMeetingServer(log, coordinator, 50*time.Millisecond).Router())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return New(log, srv.URL, srv.Client())
}

func TestClient_Meeting(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newClient(t)

	// Given a meeting hosted by Alice and joined by Bob
	created, err := c.CreateMeeting(ctx, "Alice")
	req.NoError(err)
	id := created.Meeting.ID
	joined, err := c.JoinMeeting(ctx, id, "Bob")
	req.NoError(err)
	req.Len(joined.Participants, 2)

	// When Bob turns his camera on and speaks
	bob, err := c.UpdateDevices(ctx, id, "Bob", meeting.Devices{CameraOn: true})
	req.NoError(err)
	req.True(bob.CameraOn)
	caption, err := c.AppendCaption(ctx, id, "Bob", "the deadline is next Friday")
	req.NoError(err)
	req.Equal(uint64(1), caption.Seq)
	req.Equal(meeting.MeetingID(id), caption.MeetingID)

	// Then everything is readable back
	captions, err := c.ReadCaptionsSince(ctx, id, 0)
	req.NoError(err)
	req.Len(captions.Captions, 1)
	m, err := c.GetMeeting(ctx, id)
	req.NoError(err)
	req.Equal(2, m.Participants)

	req.NoError(c.LeaveMeeting(ctx, id, "Bob"))
	members, err := c.GetMembership(ctx, id)
	req.NoError(err)
	req.Len(members, 1)

	// And typed errors survive the round trip
	err = c.EndMeeting(ctx, id, "Bob")
	req.ErrorIs(err, errors.ErrNotHost)
	var me *errors.MeetingError
	req.True(errors.As(err, &me))
	req.Equal(id, me.MeetingID)
	req.Equal("Bob", me.Name)

	req.NoError(c.EndMeeting(ctx, id, "Alice"))
	_, err = c.GetMeeting(ctx, id)
	req.ErrorIs(err, errors.ErrMeetingNotFound)
	req.Equal(errors.KindNotFound, errors.KindOf(err))
}

func TestClient_Tail_With_Pump(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	c := newClient(t)

	created, err := c.CreateMeeting(ctx, "Alice")
	req.NoError(err)
	id := created.Meeting.ID
	_, err = c.JoinMeeting(ctx, id, "Bob")
	req.NoError(err)

	// Given a scripted captioning source feeding the meeting through the client
	source := captioning.NewScriptedSource(
		captioning.Utterance{Speaker: "Alice", Text: "welcome"},
		captioning.Utterance{Speaker: "Mallory", Text: "skipped"},
		captioning.Utterance{Speaker: "Bob", Text: "thanks"},
	)
	req.NoError(captioning.NewPump(log, source, c, id).Run(ctx))

	// When tailing from the start while the host ends the meeting
	tailCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var tailed []api.Caption
	last, err := c.Tail(tailCtx, id, 0, func(caption api.Caption) error {
		tailed = append(tailed, caption)
		if len(tailed) == 2 {
			return c.EndMeeting(ctx, id, "Alice")
		}
		return nil
	})

	// Then the stream ends after the two stored captions
	req.NoError(err)
	req.Equal(uint64(2), last)
	req.Equal("welcome", tailed[0].Text)
	req.Equal("thanks", tailed[1].Text)
}

func TestClient_Tail_UnknownMeeting(t *testing.T) {
	req := require.New(t)
	c := newClient(t)

	_, err := c.Tail(context.Background(), "ZZZZZZZZ", 0, func(api.Caption) error { return nil })
	req.ErrorIs(err, errors.ErrMeetingNotFound)
}

func TestClient_TailAs_StopsWhenParticipantLeaves(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	c := newClient(t)

	created, err := c.CreateMeeting(ctx, "Alice")
	req.NoError(err)
	id := created.Meeting.ID
	_, err = c.JoinMeeting(ctx, id, "Bob")
	req.NoError(err)
	_, err = c.AppendCaption(ctx, id, "Alice", "welcome Bob")
	req.NoError(err)

	// Given Bob tails in his own name and leaves after the first caption
	tailCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var tailed []api.Caption
	last, err := c.TailAs(tailCtx, id, "Bob", 0, func(caption api.Caption) error {
		tailed = append(tailed, caption)
		return c.LeaveMeeting(ctx, id, "Bob")
	})

	// Then the stream ends cleanly while the meeting stays active
	req.NoError(err)
	req.Equal(uint64(1), last)
	req.Len(tailed, 1)
	_, err = c.GetMeeting(ctx, id)
	req.NoError(err)
}
