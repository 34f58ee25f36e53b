package moderation

import (
	"log/slog"

	"github.com/abadojack/whatlanggo"
)

// CaptionFilter censors caption text and tags it with its language.
// A nil moderator disables censoring and keeps language detection.
type CaptionFilter struct {
	moderator *Moderator
	log       *slog.Logger
}

func NewCaptionFilter(moderator *Moderator, log *slog.Logger) *CaptionFilter {
	return &CaptionFilter{moderator: moderator, log: log}
}

// Filter returns the sanitized text and its ISO 639-1 language. Detection runs on the
// original text.
func (f *CaptionFilter) Filter(text string) (string, string) {
	lang := whatlanggo.Detect(text).Lang.Iso6391()
	if f.moderator == nil {
		return text, lang
	}

	sanitized, words := f.moderator.Censor(text)
	if len(words) > 0 {
		f.log.Debug("Caption censored", "count", len(words), "lang", lang)
	}
	return sanitized, lang
}
