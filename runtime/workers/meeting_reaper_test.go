package workers

import (
	"log/slog"
	"meet-lab/domain/meeting"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type expirerFunc func(cutoff time.Time) []meeting.MeetingID

func (f expirerFunc) ExpireIdle(cutoff time.Time) []meeting.MeetingID { return f(cutoff) }

func TestMeetingReaper_Reap(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	var got time.Time
	reaper := NewMeetingReaper(log, expirerFunc(func(cutoff time.Time) []meeting.MeetingID {
		got = cutoff
		return []meeting.MeetingID{"K3F9QZ1B"}
	}), 15*time.Minute, time.Minute)
	reaper.now = func() time.Time { return now }

	expired := reaper.Reap()

	req.Equal([]meeting.MeetingID{"K3F9QZ1B"}, expired)
	req.Equal(now.Add(-15*time.Minute), got)
}
