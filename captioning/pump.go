package captioning

import (
	"context"
	"io"
	"log/slog"
	"meet-lab/domain/meeting"
	"meet-lab/errors"
)

type Appender interface {
	AppendCaption(ctx context.Context, meetingID, speaker, text string) (meeting.CaptionEvent, error)
}

type AppenderFunc func(ctx context.Context, meetingID, speaker, text string) (meeting.CaptionEvent, error)

func (f AppenderFunc) AppendCaption(ctx context.Context, meetingID, speaker, text string) (meeting.CaptionEvent, error) {
	return f(ctx, meetingID, speaker, text)
}

// Pump forwards the utterances of a source to a meeting's caption log until the
// source is exhausted or the meeting disappears.
type Pump struct {
	log       *slog.Logger
	source    Source
	appender  Appender
	meetingID string
	onCaption func(meeting.CaptionEvent)
}

func NewPump(log *slog.Logger, source Source, appender Appender, meetingID string) *Pump {
	return &Pump{log: log, source: source, appender: appender, meetingID: meetingID}
}

// OnCaption registers a callback invoked with every stored caption.
func (p *Pump) OnCaption(fn func(meeting.CaptionEvent)) *Pump {
	p.onCaption = fn
	return p
}

// Run returns nil when the source is exhausted. Utterances of speakers who are not
// members are skipped; any other failure stops the pump.
func (p *Pump) Run(ctx context.Context) error {
	for {
		u, err := p.source.Next(ctx)
		if err == io.EOF {
			p.log.Debug("Captioning source exhausted", "meeting_id", p.meetingID)
			return nil
		}
		if err != nil {
			return err
		}

		caption, err := p.appender.AppendCaption(ctx, p.meetingID, u.Speaker, u.Text)
		switch {
		case errors.Is(err, errors.ErrSpeakerNotMember), errors.Is(err, errors.ErrInvalidCaption):
			p.log.Warn("Utterance skipped", "meeting_id", p.meetingID, "speaker", u.Speaker, "error", err)
			continue
		case err != nil:
			return err
		}
		if p.onCaption != nil {
			p.onCaption(caption)
		}
	}
}
