package meeting

import (
	"strings"
	"time"
)

// SystemSpeaker is the reserved speaker of membership captions.
const SystemSpeaker = "System"

// Devices is the advisory microphone/camera state a participant reports.
// It is not authoritative over remote rendering.
type Devices struct {
	MicOn    bool
	CameraOn bool
}

type Participant struct {
	Name     string
	IsHost   bool
	Devices  Devices
	JoinedAt time.Time
	Position int // join order within the meeting, the host is 0
}

// NameKey is the case-insensitive identity of a participant within a meeting.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsReserved reports whether a name collides with a speaker owned by the system.
func IsReserved(name string) bool {
	return NameKey(name) == NameKey(SystemSpeaker)
}
