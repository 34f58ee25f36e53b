// Package event defines the facts emitted by meeting mutations.
// Events are produced under the meeting lock, in mutation order, and consumed by sinks.
package event

import (
	"meet-lab/domain/meeting"
	"time"
)

type DomainEvent interface {
	MeetingID() meeting.MeetingID
}

type MeetingCreated struct {
	Meeting meeting.Meeting
	Host    meeting.Participant
}

func (e MeetingCreated) MeetingID() meeting.MeetingID { return e.Meeting.ID }

type ParticipantJoined struct {
	Meeting     meeting.MeetingID
	Participant meeting.Participant
}

func (e ParticipantJoined) MeetingID() meeting.MeetingID { return e.Meeting }

type ParticipantLeft struct {
	Meeting     meeting.MeetingID
	Participant meeting.Participant
	At          time.Time
}

func (e ParticipantLeft) MeetingID() meeting.MeetingID { return e.Meeting }

type ParticipantUpdated struct {
	Meeting     meeting.MeetingID
	Participant meeting.Participant
}

func (e ParticipantUpdated) MeetingID() meeting.MeetingID { return e.Meeting }

type CaptionAppended struct {
	Caption meeting.CaptionEvent
}

func (e CaptionAppended) MeetingID() meeting.MeetingID { return e.Caption.MeetingID }

type MeetingEnded struct {
	Meeting meeting.MeetingID
	LastSeq uint64
	Reason  EndReason
	At      time.Time
}

func (e MeetingEnded) MeetingID() meeting.MeetingID { return e.Meeting }

type EndReason string

const (
	EndedByHost EndReason = "host"
	EndedIdle   EndReason = "idle"
)
