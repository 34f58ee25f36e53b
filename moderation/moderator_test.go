package moderation

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

func TestModerator_Censor_Captions(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	mod, err := NewModerator([]string{"damn", "bloody"}, replacementChar, log)
	require.NoError(t, err)

	tests := []struct {
		name      string
		utterance string
		expected  string
		words     []string
	}{
		{
			name:      "Spoken word in the middle of a caption",
			utterance: "Let's begin the damn meeting",
			expected:  "Let's begin the **** meeting",
			words:     []string{"damn"},
		},
		{
			name:      "Leet speak typed into the transcript",
			utterance: "this d4mn deadline again",
			expected:  "this **** deadline again",
			words:     []string{"damn"},
		},
		{
			name:      "Spelled out letter by letter",
			utterance: "it was d-a-m-n slow",
			expected:  "it was ******* slow",
			words:     []string{"damn"},
		},
		{
			name:      "Several words reported in order of appearance",
			utterance: "Bloody hell, damn it",
			expected:  "****** hell, **** it",
			words:     []string{"bloody", "damn"},
		},
		{
			name:      "Shouted with trailing punctuation",
			utterance: "DAMN, that's late",
			expected:  "****, that's late",
			words:     []string{"damn"},
		},
		{
			// spaces are separators like any punctuation, so a match may straddle two words
			name:      "Match across a word boundary",
			utterance: "the dam nation",
			expected:  "the *** *ation",
			words:     []string{"damn"},
		},
		{
			name:      "Ordinary caption",
			utterance: "The deadline is next Friday",
			expected:  "The deadline is next Friday",
		},
		{
			name:      "Only punctuation",
			utterance: "...",
			expected:  "...",
		},
		{
			name:      "Empty caption",
			utterance: "",
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			sanitized, words := mod.Censor(tt.utterance)
			req.Equal(tt.expected, sanitized)
			req.Equal(tt.words, words)
			req.Equal(len([]rune(tt.utterance)), len([]rune(sanitized)))
		})
	}
}

func TestModerator_IgnoresPunctuationOnlyEntries(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given a word list polluted with entries that normalize to nothing
	mod, err := NewModerator([]string{"...", ",,,", "", "bloody"}, '#', log)
	req.NoError(err)

	// Then punctuation in captions is never masked
	sanitized, words := mod.Censor("Wait... what?")
	req.Equal("Wait... what?", sanitized)
	req.Nil(words)

	// And the real entry still is, with the configured character
	sanitized, words = mod.Censor("a bloody long call")
	req.Equal("a ###### long call", sanitized)
	req.Equal([]string{"bloody"}, words)
}
