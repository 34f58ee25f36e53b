package runtime

import (
	"crypto/rand"
	"meet-lab/domain/meeting"
)

// RandomIDGenerator draws identifiers of meeting.IDLength characters uniformly
// from meeting.IDAlphabet.
type RandomIDGenerator struct{}

func NewRandomIDGenerator() RandomIDGenerator {
	return RandomIDGenerator{}
}

// Generate uses rejection sampling so every symbol of the 36-letter alphabet is
// equally likely: bytes >= 252 (7*36) are discarded.
func (RandomIDGenerator) Generate() (meeting.MeetingID, error) {
	const bound = 256 - 256%len(meeting.IDAlphabet)
	out := make([]byte, 0, meeting.IDLength)
	buf := make([]byte, meeting.IDLength*2)
	for len(out) < meeting.IDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= bound {
				continue
			}
			out = append(out, meeting.IDAlphabet[int(b)%len(meeting.IDAlphabet)])
			if len(out) == meeting.IDLength {
				break
			}
		}
	}
	return meeting.MeetingID(out), nil
}
