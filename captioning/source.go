// Package captioning models the speech-to-text collaborator that feeds a meeting
// transcript. Recognition itself is out of scope: a Source only yields (speaker, text) pairs.
package captioning

import (
	"context"
	"io"
	"math/rand/v2"
	"sync"
	"time"
)

type Utterance struct {
	Speaker string
	Text    string
}

// Source produces utterances. Next returns io.EOF once the source is exhausted.
type Source interface {
	Next(ctx context.Context) (Utterance, error)
}

// ScriptedSource replays a fixed list of utterances, in order.
type ScriptedSource struct {
	mu         sync.Mutex
	utterances []Utterance
	pos        int
}

func NewScriptedSource(utterances ...Utterance) *ScriptedSource {
	return &ScriptedSource{utterances: utterances}
}

func (s *ScriptedSource) Next(ctx context.Context) (Utterance, error) {
	if err := ctx.Err(); err != nil {
		return Utterance{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.utterances) {
		return Utterance{}, io.EOF
	}
	u := s.utterances[s.pos]
	s.pos++
	return u, nil
}

var DefaultPhrases = []string{
	"I think we should consider the user experience first",
	"The deadline for this project is next Friday",
	"We've seen a 15% increase in engagement",
	"Let's revisit this in our next meeting",
	"The data suggests we need a different approach",
}

// SimulatedSource emits a canned phrase every interval, from a random speaker that
// differs from the previous one whenever more than one speaker is available.
// A zero count never ends.
type SimulatedSource struct {
	mu       sync.Mutex
	speakers func() []string
	phrases  []string
	interval time.Duration
	rnd      *rand.Rand
	last     string
	count    int
	emitted  int
}

func NewSimulatedSource(speakers func() []string, interval time.Duration, count int, rnd *rand.Rand) *SimulatedSource {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &SimulatedSource{
		speakers: speakers,
		phrases:  DefaultPhrases,
		interval: interval,
		rnd:      rnd,
		count:    count,
	}
}

func (s *SimulatedSource) Next(ctx context.Context) (Utterance, error) {
	s.mu.Lock()
	done := s.count > 0 && s.emitted >= s.count
	s.mu.Unlock()
	if done {
		return Utterance{}, io.EOF
	}

	if s.interval > 0 {
		timer := time.NewTimer(s.interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Utterance{}, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	speakers := s.speakers()
	if len(speakers) == 0 {
		return Utterance{}, io.EOF
	}
	speaker := s.pickSpeaker(speakers)
	s.last = speaker
	s.emitted++
	return Utterance{Speaker: speaker, Text: s.phrases[s.rnd.IntN(len(s.phrases))]}, nil
}

func (s *SimulatedSource) pickSpeaker(speakers []string) string {
	if len(speakers) == 1 {
		return speakers[0]
	}
	candidates := make([]string, 0, len(speakers))
	for _, name := range speakers {
		if name != s.last {
			candidates = append(candidates, name)
		}
	}
	return candidates[s.rnd.IntN(len(candidates))]
}
