package captioning

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"meet-lab/domain/meeting"
	"meet-lab/errors"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestScriptedSource(t *testing.T) {
	req := require.New(t)
	source := NewScriptedSource(Utterance{"Alice", "Let's begin"}, Utterance{"Bob", "Sounds good"})
	ctx := context.Background()

	u, err := source.Next(ctx)
	req.NoError(err)
	req.Equal(Utterance{"Alice", "Let's begin"}, u)
	u, err = source.Next(ctx)
	req.NoError(err)
	req.Equal("Bob", u.Speaker)
	_, err = source.Next(ctx)
	req.ErrorIs(err, io.EOF)
}

func TestSimulatedSource_AlternatesSpeakers(t *testing.T) {
	req := require.New(t)
	speakers := func() []string { return []string{"Alice", "Bob", "Carol"} }
	source := NewSimulatedSource(speakers, 0, 50, rand.New(rand.NewPCG(1, 2)))

	var last string
	for i := 0; i < 50; i++ {
		u, err := source.Next(context.Background())
		req.NoError(err)
		req.NotEqual(last, u.Speaker)
		req.Contains(DefaultPhrases, u.Text)
		last = u.Speaker
	}
	_, err := source.Next(context.Background())
	req.ErrorIs(err, io.EOF)
}

func TestSimulatedSource_CanceledWhileWaiting(t *testing.T) {
	req := require.New(t)
	source := NewSimulatedSource(func() []string { return []string{"Alice"} }, time.Hour, 0, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := source.Next(ctx)

	req.ErrorIs(err, context.DeadlineExceeded)
}

func TestPump_Run(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	source := NewScriptedSource(
		Utterance{"Alice", "Let's begin"},
		Utterance{"Mallory", "I am not here"},
		Utterance{"Bob", "Sounds good"},
	)

	// Given a log accepting only Alice and Bob
	var seq uint64
	appender := AppenderFunc(func(_ context.Context, id, speaker, text string) (meeting.CaptionEvent, error) {
		if speaker == "Mallory" {
			return meeting.CaptionEvent{}, errors.New(errors.ErrSpeakerNotMember, id, speaker)
		}
		seq++
		return meeting.CaptionEvent{MeetingID: meeting.MeetingID(id), Seq: seq, Speaker: speaker, Text: text}, nil
	})

	var stored []meeting.CaptionEvent
	err := NewPump(log, source, appender, "K3F9QZ1B").
		OnCaption(func(c meeting.CaptionEvent) { stored = append(stored, c) }).
		Run(context.Background())

	// Then the non-member utterance was skipped
	req.NoError(err)
	req.Len(stored, 2)
	req.Equal("Sounds good", stored[1].Text)
	req.Equal(uint64(2), stored[1].Seq)
}

func TestPump_StopsWhenMeetingEnded(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	source := NewScriptedSource(Utterance{"Alice", "hello"}, Utterance{"Alice", "again"})
	appender := AppenderFunc(func(_ context.Context, id, speaker, _ string) (meeting.CaptionEvent, error) {
		return meeting.CaptionEvent{}, errors.New(errors.ErrMeetingNotFound, id, speaker)
	})

	err := NewPump(log, source, appender, "K3F9QZ1B").Run(context.Background())

	req.ErrorIs(err, errors.ErrMeetingNotFound)
}
