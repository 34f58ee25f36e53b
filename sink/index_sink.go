package sink

import (
	"context"
	"log/slog"
	"meet-lab/contract"
	"meet-lab/domain/event"
	"meet-lab/domain/meeting"
	"sync"
	"time"
)

// IndexSink batches appended captions into the transcript index.
// A batch is flushed when it reaches maxBatch captions or bufferTimeout after its
// first caption, whichever comes first.
type IndexSink struct {
	mu            sync.Mutex
	timer         *time.Timer
	index         contract.ITranscriptIndex
	log           *slog.Logger
	captions      []meeting.CaptionEvent
	maxBatch      int
	bufferTimeout time.Duration
}

func NewIndexSink(index contract.ITranscriptIndex, log *slog.Logger, maxBatch int, bufferTimeout time.Duration) *IndexSink {
	return &IndexSink{
		index:         index,
		log:           log,
		maxBatch:      max(maxBatch, 1),
		bufferTimeout: bufferTimeout,
	}
}

func (s *IndexSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.CaptionAppended:
		return s.add(evt.Caption)
	case event.MeetingEnded:
		// Pending captions of the meeting must reach the index before it is dropped.
		if err := s.Flush(); err != nil {
			return err
		}
		return s.index.Drop(evt.Meeting, evt.LastSeq)
	default:
		return nil
	}
}

func (s *IndexSink) add(caption meeting.CaptionEvent) error {
	s.mu.Lock()
	s.captions = append(s.captions, caption)

	if len(s.captions) == 1 && s.timer == nil {
		s.timer = time.AfterFunc(s.bufferTimeout, func() {
			if err := s.Flush(); err != nil {
				s.log.Error("Timeout flush of transcript index failed", "error", err)
			}
		})
	}
	isFull := len(s.captions) >= s.maxBatch
	s.mu.Unlock()

	if isFull {
		return s.Flush()
	}
	return nil
}

// Flush writes the pending batch, swapping the buffer so new captions can queue meanwhile.
func (s *IndexSink) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if len(s.captions) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.captions
	s.captions = make([]meeting.CaptionEvent, 0, s.maxBatch)
	s.mu.Unlock()

	if err := s.index.Index(batch...); err != nil {
		s.log.Error("Unable to index captions", "count", len(batch), "error", err)
		return err
	}
	s.log.Debug("Captions indexed", "count", len(batch))
	return nil
}
