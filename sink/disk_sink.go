package sink

import (
	"context"
	"fmt"
	"log/slog"
	"meet-lab/domain/event"
	"meet-lab/repositories"
)

// DiskSink persists domain events. It runs on the fanout worker, never under a meeting lock.
type DiskSink struct {
	repository repositories.IMeetingRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IMeetingRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	err := d.consume(e)
	if err != nil {
		d.log.Error("Unable to persist event", "meeting_id", e.MeetingID(),
			"event", fmt.Sprintf("%T", e), "error", err)
	}
	return err
}

func (d DiskSink) consume(e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MeetingCreated:
		if err := d.repository.SaveMeeting(evt.Meeting); err != nil {
			return err
		}
		return d.repository.SaveParticipant(evt.Meeting.ID, evt.Host)
	case event.ParticipantJoined:
		return d.repository.SaveParticipant(evt.Meeting, evt.Participant)
	case event.ParticipantUpdated:
		return d.repository.SaveParticipant(evt.Meeting, evt.Participant)
	case event.ParticipantLeft:
		return d.repository.DeleteParticipant(evt.Meeting, evt.Participant.Name)
	case event.CaptionAppended:
		return d.repository.StoreCaption(evt.Caption)
	case event.MeetingEnded:
		return d.repository.DeleteMeeting(evt.Meeting)
	default:
		d.log.Debug(fmt.Sprintf("Not implemented event : %T", evt))
		return nil
	}
}
