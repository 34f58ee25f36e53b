package meeting

import (
	"time"

	"github.com/google/uuid"
)

// CaptionEvent represents an immutable, sequence-numbered utterance.
type CaptionEvent struct {
	ID        uuid.UUID
	MeetingID MeetingID
	Seq       uint64 // gapless, starts at 1
	Speaker   string
	Text      string
	Lang      string // ISO 639-1, empty when detection is unreliable
	At        time.Time
}
