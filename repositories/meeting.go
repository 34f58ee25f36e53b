//go:generate go run go.uber.org/mock/mockgen -source=meeting.go -destination=../mocks/mock_meeting_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"meet-lab/domain/meeting"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

type IMeetingRepository interface {
	SaveMeeting(m meeting.Meeting) error
	DeleteMeeting(id meeting.MeetingID) error
	ListMeetings() ([]meeting.Meeting, error)
	SaveParticipant(id meeting.MeetingID, p meeting.Participant) error
	DeleteParticipant(id meeting.MeetingID, name string) error
	GetParticipants(id meeting.MeetingID) ([]meeting.Participant, error)
	StoreCaption(caption meeting.CaptionEvent) error
	GetCaptions(id meeting.MeetingID, afterSeq uint64, limit int) ([]meeting.CaptionEvent, error)
}

// MeetingRepository persists meetings, memberships and transcripts in BadgerDB.
// Keys:
//
//	meeting:{id}
//	participant:{id}:{lower(name)}
//	caption:{id}:{seq zero-padded to 20 digits}
//
// The padded sequence keeps lexicographical order equal to transcript order.
type MeetingRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMeetingRepository(db *badger.DB, log *slog.Logger) *MeetingRepository {
	return &MeetingRepository{db: db, log: log}
}

func meetingKey(id meeting.MeetingID) []byte {
	return []byte(fmt.Sprintf("meeting:%s", id))
}

func participantPrefix(id meeting.MeetingID) []byte {
	return []byte(fmt.Sprintf("participant:%s:", id))
}

func participantKey(id meeting.MeetingID, name string) []byte {
	return append(participantPrefix(id), []byte(meeting.NameKey(name))...)
}

func captionPrefix(id meeting.MeetingID) []byte {
	return []byte(fmt.Sprintf("caption:%s:", id))
}

func captionKey(id meeting.MeetingID, seq uint64) []byte {
	return append(captionPrefix(id), []byte(fmt.Sprintf("%020d", seq))...)
}

func (r *MeetingRepository) SaveMeeting(m meeting.Meeting) error {
	bytes, err := encodeMeeting(m)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(meetingKey(m.ID), bytes)
	})
}

// DeleteMeeting removes the meeting record together with its participants and captions.
// A write batch is used because a long transcript would not fit in a single transaction.
func (r *MeetingRepository) DeleteMeeting(id meeting.MeetingID) error {
	var keys [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for _, prefix := range [][]byte{participantPrefix(id), captionPrefix(id)} {
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				keys = append(keys, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := r.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range append(keys, meetingKey(id)) {
		if err = wb.Delete(key); err != nil {
			return err
		}
	}
	if err = wb.Flush(); err != nil {
		return err
	}
	r.log.Debug("Meeting deleted from store", "meeting_id", id, "keys", len(keys)+1)
	return nil
}

func (r *MeetingRepository) ListMeetings() ([]meeting.Meeting, error) {
	var meetings []meeting.Meeting
	err := r.scan([]byte("meeting:"), nil, 0, func(value []byte) error {
		m, err := decodeMeeting(value)
		if err != nil {
			return err
		}
		meetings = append(meetings, m)
		return nil
	})
	return meetings, err
}

func (r *MeetingRepository) SaveParticipant(id meeting.MeetingID, p meeting.Participant) error {
	bytes, err := encodeParticipant(p)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(participantKey(id, p.Name), bytes)
	})
}

func (r *MeetingRepository) DeleteParticipant(id meeting.MeetingID, name string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(participantKey(id, name))
	})
}

// GetParticipants returns the stored members of a meeting in join order.
func (r *MeetingRepository) GetParticipants(id meeting.MeetingID) ([]meeting.Participant, error) {
	var participants []meeting.Participant
	err := r.scan(participantPrefix(id), nil, 0, func(value []byte) error {
		p, err := decodeParticipant(value)
		if err != nil {
			return err
		}
		participants = append(participants, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sortByPosition(participants), nil
}

func (r *MeetingRepository) StoreCaption(caption meeting.CaptionEvent) error {
	bytes, err := encodeCaption(caption)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(captionKey(caption.MeetingID, caption.Seq), bytes)
	})
}

// GetCaptions retrieves the captions strictly after afterSeq using a prefix scan.
// A limit <= 0 returns everything.
func (r *MeetingRepository) GetCaptions(id meeting.MeetingID, afterSeq uint64, limit int) ([]meeting.CaptionEvent, error) {
	var captions []meeting.CaptionEvent
	err := r.scan(captionPrefix(id), captionKey(id, afterSeq+1), limit, func(value []byte) error {
		c, err := decodeCaption(value)
		if err != nil {
			return err
		}
		c.MeetingID = id
		captions = append(captions, c)
		return nil
	})
	return captions, err
}

// scan iterates values under prefix starting at seek (or prefix when nil).
func (r *MeetingRepository) scan(prefix, seek []byte, limit int, fn func(value []byte) error) error {
	if seek == nil {
		seek = prefix
	}
	return r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		count := 0
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && count == limit {
				break
			}
			if err := it.Item().Value(fn); err != nil {
				return err
			}
			count++
		}
		return nil
	})
}

func sortByPosition(participants []meeting.Participant) []meeting.Participant {
	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].IsHost != participants[j].IsHost {
			return participants[i].IsHost
		}
		return participants[i].Position < participants[j].Position
	})
	return participants
}
