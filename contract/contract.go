//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"meet-lab/domain/event"
	"meet-lab/domain/meeting"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type ISubscriptionRegistry interface {
	GetSinksForMeeting(meetingID meeting.MeetingID) []EventSink
	Subscribe(subscriptionID string, meetingID meeting.MeetingID, sink EventSink)
	Unsubscribe(subscriptionID string, meetingID meeting.MeetingID)
	Drop(meetingID meeting.MeetingID) []EventSink
}

// IDGenerator produces candidate meeting identifiers; collisions are checked by the caller.
type IDGenerator interface {
	Generate() (meeting.MeetingID, error)
}

// ITranscriptIndex serves full-text search over captions. Indexing is eventually consistent
// with the caption log.
type ITranscriptIndex interface {
	Index(captions ...meeting.CaptionEvent) error
	Search(ctx context.Context, meetingID meeting.MeetingID, query string, limit int) ([]uint64, error)
	Drop(meetingID meeting.MeetingID, lastSeq uint64) error
}
