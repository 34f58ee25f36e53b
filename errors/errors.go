// Package errors defines the error taxonomy of the meeting core.
// Errors carry a kind and the offending identifier or name, never presentation text.
package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrOnlyCensoredFiles = fmt.Errorf("censored directory contains no word list")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
	ErrSinkTimeout       = fmt.Errorf("sink delivery timed out")
)

var (
	ErrMeetingNotFound     = fmt.Errorf("meeting not found")
	ErrParticipantNotFound = fmt.Errorf("participant not found")

	ErrDuplicateMeeting = fmt.Errorf("duplicate meeting")
	ErrDuplicateName    = fmt.Errorf("duplicate name")
	ErrReservedName     = fmt.Errorf("reserved name")
	ErrNotHost          = fmt.Errorf("not host")
	ErrHostCannotLeave  = fmt.Errorf("host cannot leave")
	ErrSpeakerNotMember = fmt.Errorf("speaker not member")

	ErrExhaustedIDSpace = fmt.Errorf("exhausted id space")
	ErrIDGeneration     = fmt.Errorf("id generation failed")

	ErrInvalidName      = fmt.Errorf("invalid name")
	ErrInvalidMeetingID = fmt.Errorf("invalid meeting id")
	ErrInvalidCaption   = fmt.Errorf("invalid caption")
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindExhaustion
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindExhaustion:
		return "exhaustion"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

var kinds = map[error]Kind{
	ErrMeetingNotFound:     KindNotFound,
	ErrParticipantNotFound: KindNotFound,
	ErrDuplicateMeeting:    KindConflict,
	ErrDuplicateName:       KindConflict,
	ErrReservedName:        KindConflict,
	ErrNotHost:             KindConflict,
	ErrHostCannotLeave:     KindConflict,
	ErrSpeakerNotMember:    KindConflict,
	ErrExhaustedIDSpace:    KindExhaustion,
	ErrIDGeneration:        KindExhaustion,
	ErrInvalidName:         KindInvalid,
	ErrInvalidMeetingID:    KindInvalid,
	ErrInvalidCaption:      KindInvalid,
}

var codes = map[error]string{
	ErrMeetingNotFound:     "meeting_not_found",
	ErrParticipantNotFound: "participant_not_found",
	ErrDuplicateMeeting:    "duplicate_meeting",
	ErrDuplicateName:       "duplicate_name",
	ErrReservedName:        "reserved_name",
	ErrNotHost:             "not_host",
	ErrHostCannotLeave:     "host_cannot_leave",
	ErrSpeakerNotMember:    "speaker_not_member",
	ErrExhaustedIDSpace:    "exhausted_id_space",
	ErrIDGeneration:        "id_generation_failed",
	ErrInvalidName:         "invalid_name",
	ErrInvalidMeetingID:    "invalid_meeting_id",
	ErrInvalidCaption:      "invalid_caption",
}

// MeetingError is the typed outcome returned by every coordinator operation.
type MeetingError struct {
	Kind      Kind
	Err       error
	MeetingID string
	Name      string
}

func (e *MeetingError) Error() string {
	switch {
	case e.MeetingID != "" && e.Name != "":
		return fmt.Sprintf("%s: meeting=%s name=%s", e.Err, e.MeetingID, e.Name)
	case e.MeetingID != "":
		return fmt.Sprintf("%s: meeting=%s", e.Err, e.MeetingID)
	case e.Name != "":
		return fmt.Sprintf("%s: name=%s", e.Err, e.Name)
	}
	return e.Err.Error()
}

func (e *MeetingError) Unwrap() error { return e.Err }

// Code is a stable machine-readable identifier for the sentinel.
func (e *MeetingError) Code() string {
	if c, ok := codes[e.Err]; ok {
		return c
	}
	return "internal"
}

// New wraps a sentinel with the meeting id and name it refers to.
func New(sentinel error, meetingID, name string) *MeetingError {
	return &MeetingError{Kind: kinds[sentinel], Err: sentinel, MeetingID: meetingID, Name: name}
}

// KindOf classifies any error returned by the core.
func KindOf(err error) Kind {
	var me *MeetingError
	if stderrors.As(err, &me) {
		return me.Kind
	}
	for sentinel, kind := range kinds {
		if stderrors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}

// As and Is mirror the standard library so callers keep a single errors import.
func As(err error, target any) bool { return stderrors.As(err, target) }

func Is(err, target error) bool { return stderrors.Is(err, target) }

// FromCode rebuilds a MeetingError from its code, as received by a remote caller.
func FromCode(code, meetingID, name string) *MeetingError {
	for sentinel, c := range codes {
		if c == code {
			return New(sentinel, meetingID, name)
		}
	}
	return &MeetingError{Kind: KindUnknown, Err: fmt.Errorf("%s", code), MeetingID: meetingID, Name: name}
}
