// Package meeting contains the core concepts of the meeting system.
// Types here enforce data-model invariants but are not safe for concurrent use:
// synchronization belongs to the runtime.
package meeting

import (
	"strings"
	"time"
)

const (
	IDLength    = 8
	IDAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	MaxNameSize = 30
)

type MeetingID string

func (id MeetingID) String() string { return string(id) }

// NormalizeID trims and upper-cases an identifier received on a boundary call.
func NormalizeID(raw string) MeetingID {
	return MeetingID(strings.ToUpper(strings.TrimSpace(raw)))
}

// Valid reports whether the identifier only uses the meeting alphabet and fits IDLength.
func (id MeetingID) Valid() bool {
	if len(id) == 0 || len(id) > IDLength {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(IDAlphabet, r) {
			return false
		}
	}
	return true
}

type State string

const (
	StateActive State = "ACTIVE"
	StateEnded  State = "ENDED"
)

// Meeting is the registry record of a session.
type Meeting struct {
	ID        MeetingID
	HostName  string
	CreatedAt time.Time
	State     State
}

// Summary is a read-only view combining the record with its current sizes.
type Summary struct {
	Meeting
	Participants int
	LastSeq      uint64
	UpdatedAt    time.Time
}
