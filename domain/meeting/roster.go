package meeting

import (
	"meet-lab/errors"
	"time"
)

// Roster is the ordered membership list of one meeting.
// Order is join order, so the host created with the meeting is always first.
type Roster struct {
	members []Participant
	joins   int
}

// NewRoster seeds a roster with its host.
func NewRoster(hostName string, at time.Time) *Roster {
	return &Roster{members: []Participant{{
		Name:     hostName,
		IsHost:   true,
		Devices:  Devices{MicOn: true, CameraOn: true},
		JoinedAt: at,
	}}}
}

// RestoreRoster rebuilds a roster from persisted participants already in join order.
func RestoreRoster(participants []Participant) *Roster {
	members := make([]Participant, len(participants))
	copy(members, participants)
	joins := 0
	for _, p := range members {
		joins = max(joins, p.Position)
	}
	return &Roster{members: members, joins: joins}
}

func (r *Roster) indexOf(name string) int {
	key := NameKey(name)
	for i, p := range r.members {
		if NameKey(p.Name) == key {
			return i
		}
	}
	return -1
}

// Add appends a non-host participant. Names are unique case-insensitively.
func (r *Roster) Add(name string, at time.Time) (Participant, error) {
	if IsReserved(name) {
		return Participant{}, errors.ErrReservedName
	}
	if r.indexOf(name) >= 0 {
		return Participant{}, errors.ErrDuplicateName
	}
	r.joins++
	p := Participant{
		Name:     name,
		Devices:  Devices{MicOn: true, CameraOn: true},
		JoinedAt: at,
		Position: r.joins,
	}
	r.members = append(r.members, p)
	return p, nil
}

// Remove deletes a non-host participant and returns it.
func (r *Roster) Remove(name string) (Participant, error) {
	i := r.indexOf(name)
	if i < 0 {
		return Participant{}, errors.ErrParticipantNotFound
	}
	p := r.members[i]
	if p.IsHost {
		return Participant{}, errors.ErrHostCannotLeave
	}
	r.members = append(r.members[:i], r.members[i+1:]...)
	return p, nil
}

func (r *Roster) Get(name string) (Participant, bool) {
	i := r.indexOf(name)
	if i < 0 {
		return Participant{}, false
	}
	return r.members[i], true
}

func (r *Roster) Contains(name string) bool {
	return r.indexOf(name) >= 0
}

// IsHost reports whether name designates the current host.
func (r *Roster) IsHost(name string) bool {
	p, ok := r.Get(name)
	return ok && p.IsHost
}

func (r *Roster) SetDevices(name string, devices Devices) (Participant, error) {
	i := r.indexOf(name)
	if i < 0 {
		return Participant{}, errors.ErrParticipantNotFound
	}
	r.members[i].Devices = devices
	return r.members[i], nil
}

func (r *Roster) Len() int {
	return len(r.members)
}

// Snapshot returns a copy safe to hand outside the meeting lock.
func (r *Roster) Snapshot() []Participant {
	out := make([]Participant, len(r.members))
	copy(out, r.members)
	return out
}
