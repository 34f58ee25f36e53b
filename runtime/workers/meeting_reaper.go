package workers

import (
	"context"
	"log/slog"
	"meet-lab/domain/meeting"
	"time"
)

type IdleExpirer interface {
	ExpireIdle(cutoff time.Time) []meeting.MeetingID
}

// MeetingReaper ends the meetings that saw no activity for idleTimeout.
type MeetingReaper struct {
	log         *slog.Logger
	expirer     IdleExpirer
	idleTimeout time.Duration
	interval    time.Duration
	now         func() time.Time
}

func NewMeetingReaper(log *slog.Logger, expirer IdleExpirer, idleTimeout, interval time.Duration) *MeetingReaper {
	return &MeetingReaper{
		log:         log,
		expirer:     expirer,
		idleTimeout: idleTimeout,
		interval:    interval,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (w *MeetingReaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Reap()
		}
	}
}

func (w *MeetingReaper) Reap() []meeting.MeetingID {
	expired := w.expirer.ExpireIdle(w.now().Add(-w.idleTimeout))
	if len(expired) > 0 {
		w.log.Info("Idle meetings expired", "count", len(expired), "idle_timeout", w.idleTimeout)
	}
	return expired
}
