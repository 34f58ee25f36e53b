package workers

import (
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fixedStats struct{ meetings, participants int }

func (s fixedStats) Stats() (int, int) { return s.meetings, s.participants }

func TestStatsReporter_Collect(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	reporter := NewStatsReporter(log, fixedStats{meetings: 2, participants: 5}, func() int { return 3 }, time.Second)

	stats := reporter.Collect()

	req.Equal(2, stats.Meetings)
	req.Equal(5, stats.Participants)
	req.Equal(3, stats.Subscriptions)
	req.Positive(stats.RSSMb)
}
