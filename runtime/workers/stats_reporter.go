package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

type StatsSource interface {
	Stats() (meetings, participants int)
}

type Stats struct {
	Meetings      int
	Participants  int
	Subscriptions int
	RSSMb         uint64
	CPUPercent    float64
}

// StatsReporter periodically logs the size of the live state and the footprint of the process.
type StatsReporter struct {
	log           *slog.Logger
	source        StatsSource
	subscriptions func() int
	interval      time.Duration
	proc          *process.Process
}

func NewStatsReporter(log *slog.Logger, source StatsSource, subscriptions func() int, interval time.Duration) *StatsReporter {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Debug("Process metrics unavailable", "error", err)
	}
	return &StatsReporter{log: log, source: source, subscriptions: subscriptions, interval: interval, proc: proc}
}

func (w *StatsReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s := w.Collect()
			w.log.Info("Stats",
				"meetings", s.Meetings,
				"participants", s.Participants,
				"subscriptions", s.Subscriptions,
				"rss_mb", s.RSSMb,
				"cpu_percent", s.CPUPercent)
		}
	}
}

func (w *StatsReporter) Collect() Stats {
	var s Stats
	s.Meetings, s.Participants = w.source.Stats()
	if w.subscriptions != nil {
		s.Subscriptions = w.subscriptions()
	}
	if w.proc == nil {
		return s
	}
	if mem, err := w.proc.MemoryInfo(); err == nil {
		s.RSSMb = mem.RSS / 1024 / 1024
	}
	if cpu, err := w.proc.CPUPercent(); err == nil {
		s.CPUPercent = cpu
	}
	return s
}
