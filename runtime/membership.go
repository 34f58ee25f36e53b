package runtime

import (
	"log/slog"
	"meet-lab/domain/event"
	"meet-lab/domain/meeting"
	"meet-lab/errors"
	"time"
)

// MembershipManager implements join, leave and device updates on the registry's
// meetings. Host leave is refused: only EndMeeting terminates a meeting for its host.
type MembershipManager struct {
	log       *slog.Logger
	registry  *MeetingRegistry
	publisher Publisher
	captions  *CaptionLog
	now       func() time.Time
}

func NewMembershipManager(log *slog.Logger, registry *MeetingRegistry, publisher Publisher,
	captions *CaptionLog, now func() time.Time) *MembershipManager {
	return &MembershipManager{log: log, registry: registry, publisher: publisher, captions: captions, now: now}
}

// Join adds a non-host participant and returns it with the membership snapshot
// taken in the same critical section.
func (m *MembershipManager) Join(id meeting.MeetingID, name string) (meeting.Participant, []meeting.Participant, error) {
	var (
		participant meeting.Participant
		snapshot    []meeting.Participant
	)
	err := m.registry.Mutate(id, func(room *Room) error {
		p, err := room.Roster.Add(name, m.now())
		if err != nil {
			return errors.New(err, id.String(), name)
		}
		participant = p
		snapshot = room.Roster.Snapshot()
		m.publisher.Publish(event.ParticipantJoined{Meeting: id, Participant: p})
		m.captions.announce(room, "joined", p.Name)
		return nil
	})
	if err != nil {
		return meeting.Participant{}, nil, err
	}
	m.log.Debug("Participant joined", "meeting_id", id, "name", name, "members", len(snapshot))
	return participant, snapshot, nil
}

func (m *MembershipManager) Leave(id meeting.MeetingID, name string) error {
	err := m.registry.Mutate(id, func(room *Room) error {
		p, err := room.Roster.Remove(name)
		if err != nil {
			return errors.New(err, id.String(), name)
		}
		m.publisher.Publish(event.ParticipantLeft{Meeting: id, Participant: p, At: m.now()})
		m.captions.announce(room, "left", p.Name)
		return nil
	})
	if err != nil {
		return err
	}
	m.log.Debug("Participant left", "meeting_id", id, "name", name)
	return nil
}

// SetDevices records the advisory microphone/camera state of a participant.
func (m *MembershipManager) SetDevices(id meeting.MeetingID, name string, devices meeting.Devices) (meeting.Participant, error) {
	var participant meeting.Participant
	err := m.registry.Mutate(id, func(room *Room) error {
		p, err := room.Roster.SetDevices(name, devices)
		if err != nil {
			return errors.New(err, id.String(), name)
		}
		participant = p
		m.publisher.Publish(event.ParticipantUpdated{Meeting: id, Participant: p})
		return nil
	})
	return participant, err
}

// Snapshot returns the members in join order, host first.
func (m *MembershipManager) Snapshot(id meeting.MeetingID) ([]meeting.Participant, error) {
	var snapshot []meeting.Participant
	err := m.registry.View(id, func(room *Room) error {
		snapshot = room.Roster.Snapshot()
		return nil
	})
	return snapshot, err
}
