package runtime

import (
	"meet-lab/domain/meeting"
	"meet-lab/errors"
	"sync"
	"sync/atomic"
	"time"
)

// Room is the mutable state of one meeting. It is only reachable through the
// registry callbacks, which run under the meeting's own lock.
type Room struct {
	Meeting    meeting.Meeting
	Roster     *meeting.Roster
	Transcript *meeting.Transcript
}

type entry struct {
	mu         sync.RWMutex
	room       Room
	ended      bool
	lastActive atomic.Int64 // unix nanos
}

func (e *entry) touch(at time.Time) {
	e.lastActive.Store(at.UnixNano())
}

// MeetingRegistry owns the mapping of meeting identifier to meeting state and is
// the single authority on existence.
//
// The map lock only guards the map itself. Every meeting carries its own
// RWMutex, so operations on unrelated meetings never contend. The map lock is
// never held while a meeting lock is being acquired.
type MeetingRegistry struct {
	mu      sync.RWMutex
	entries map[meeting.MeetingID]*entry
	now     func() time.Time
}

func NewMeetingRegistry(now func() time.Time) *MeetingRegistry {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &MeetingRegistry{
		entries: make(map[meeting.MeetingID]*entry),
		now:     now,
	}
}

// Create registers a meeting whose roster already contains its host, so no reader
// can observe a registered identifier without a host.
// onCreated runs under the new meeting's lock before any other caller can use it.
func (r *MeetingRegistry) Create(id meeting.MeetingID, hostName string, onCreated func(*Room)) (meeting.Meeting, meeting.Participant, error) {
	at := r.now()
	e := &entry{room: Room{
		Meeting: meeting.Meeting{
			ID:        id,
			HostName:  hostName,
			CreatedAt: at,
			State:     meeting.StateActive,
		},
		Roster:     meeting.NewRoster(hostName, at),
		Transcript: meeting.NewTranscript(),
	}}
	e.touch(at)

	e.mu.Lock()
	defer e.mu.Unlock()

	r.mu.Lock()
	if _, ok := r.entries[id]; ok {
		r.mu.Unlock()
		return meeting.Meeting{}, meeting.Participant{}, errors.New(errors.ErrDuplicateMeeting, id.String(), "")
	}
	r.entries[id] = e
	r.mu.Unlock()

	if onCreated != nil {
		onCreated(&e.room)
	}
	host, _ := e.room.Roster.Get(hostName)
	return e.room.Meeting, host, nil
}

// Restore inserts a meeting rebuilt from storage.
func (r *MeetingRegistry) Restore(room Room) error {
	e := &entry{room: room}
	e.touch(r.now())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[room.Meeting.ID]; ok {
		return errors.New(errors.ErrDuplicateMeeting, room.Meeting.ID.String(), "")
	}
	r.entries[room.Meeting.ID] = e
	return nil
}

func (r *MeetingRegistry) lookup(id meeting.MeetingID) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Exists reports whether the identifier is allocated, including a meeting that is
// in the middle of being ended.
func (r *MeetingRegistry) Exists(id meeting.MeetingID) bool {
	_, ok := r.lookup(id)
	return ok
}

func (r *MeetingRegistry) Get(id meeting.MeetingID) (meeting.Meeting, error) {
	var m meeting.Meeting
	err := r.View(id, func(room *Room) error {
		m = room.Meeting
		return nil
	})
	return m, err
}

func (r *MeetingRegistry) Summary(id meeting.MeetingID) (meeting.Summary, error) {
	var s meeting.Summary
	if e, ok := r.lookup(id); ok {
		s.UpdatedAt = time.Unix(0, e.lastActive.Load()).UTC()
	}
	err := r.View(id, func(room *Room) error {
		s.Meeting = room.Meeting
		s.Participants = room.Roster.Len()
		s.LastSeq = room.Transcript.Head()
		return nil
	})
	if err != nil {
		return meeting.Summary{}, err
	}
	return s, nil
}

// View runs fn with a consistent point-in-time view of the meeting.
func (r *MeetingRegistry) View(id meeting.MeetingID, fn func(*Room) error) error {
	e, ok := r.lookup(id)
	if !ok {
		return errors.New(errors.ErrMeetingNotFound, id.String(), "")
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.ended {
		return errors.New(errors.ErrMeetingNotFound, id.String(), "")
	}
	e.touch(r.now())
	return fn(&e.room)
}

// Mutate runs fn with exclusive access to the meeting.
func (r *MeetingRegistry) Mutate(id meeting.MeetingID, fn func(*Room) error) error {
	e, ok := r.lookup(id)
	if !ok {
		return errors.New(errors.ErrMeetingNotFound, id.String(), "")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ended {
		return errors.New(errors.ErrMeetingNotFound, id.String(), "")
	}
	e.touch(r.now())
	return fn(&e.room)
}

// End runs guard under the meeting lock and, when it succeeds, marks the meeting
// ended and evicts it. Ending an absent meeting returns ErrMeetingNotFound.
func (r *MeetingRegistry) End(id meeting.MeetingID, guard func(*Room) error) (meeting.Meeting, error) {
	e, ok := r.lookup(id)
	if !ok {
		return meeting.Meeting{}, errors.New(errors.ErrMeetingNotFound, id.String(), "")
	}

	ended, err := func() (meeting.Meeting, error) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.ended {
			return meeting.Meeting{}, errors.New(errors.ErrMeetingNotFound, id.String(), "")
		}
		if guard != nil {
			if err := guard(&e.room); err != nil {
				return meeting.Meeting{}, err
			}
		}
		e.ended = true
		e.room.Meeting.State = meeting.StateEnded
		return e.room.Meeting, nil
	}()
	if err != nil {
		return meeting.Meeting{}, err
	}

	r.mu.Lock()
	if r.entries[id] == e {
		delete(r.entries, id)
	}
	r.mu.Unlock()
	return ended, nil
}

func (r *MeetingRegistry) all() []*entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// IdleSince lists the meetings with no activity after cutoff.
func (r *MeetingRegistry) IdleSince(cutoff time.Time) []meeting.MeetingID {
	var ids []meeting.MeetingID
	for _, e := range r.all() {
		if time.Unix(0, e.lastActive.Load()).Before(cutoff) {
			e.mu.RLock()
			if !e.ended {
				ids = append(ids, e.room.Meeting.ID)
			}
			e.mu.RUnlock()
		}
	}
	return ids
}

// Stats counts active meetings and their participants.
func (r *MeetingRegistry) Stats() (meetings, participants int) {
	for _, e := range r.all() {
		e.mu.RLock()
		if !e.ended {
			meetings++
			participants += e.room.Roster.Len()
		}
		e.mu.RUnlock()
	}
	return meetings, participants
}
