package meeting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeID(t *testing.T) {
	req := require.New(t)

	req.Equal(MeetingID("K3F9QZ1B"), NormalizeID("  k3f9qz1b "))
	req.True(NormalizeID("k3f9qz1b").Valid())
}

func TestMeetingID_Valid(t *testing.T) {
	tests := []struct {
		name  string
		id    MeetingID
		valid bool
	}{
		{"full length", "K3F9QZ1B", true},
		{"short", "ABC", true},
		{"empty", "", false},
		{"too long", "K3F9QZ1BX", false},
		{"lower case", "k3f9qz1b", false},
		{"punctuation", "K3F9-Z1B", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.valid, tt.id.Valid())
		})
	}
}
