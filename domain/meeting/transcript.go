package meeting

// Transcript is the append-only caption log of one meeting.
// The event with sequence n is stored at index n-1, which keeps tailing O(1).
type Transcript struct {
	events []CaptionEvent
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// RestoreTranscript rebuilds a log from persisted events. Events must be ordered
// and gapless from 1; the first gap truncates the restored log.
func RestoreTranscript(events []CaptionEvent) *Transcript {
	t := &Transcript{events: make([]CaptionEvent, 0, len(events))}
	for _, e := range events {
		if e.Seq != t.Head()+1 {
			break
		}
		t.events = append(t.events, e)
	}
	return t
}

// Append assigns the next sequence number to the event and stores it.
func (t *Transcript) Append(e CaptionEvent) CaptionEvent {
	e.Seq = t.Head() + 1
	t.events = append(t.events, e)
	return e
}

// Head is the sequence number of the last event, 0 when empty.
func (t *Transcript) Head() uint64 {
	return uint64(len(t.events))
}

// ReadSince returns the events strictly after lastSeen and the new offset.
// An offset beyond the head yields no events and the head as new offset.
func (t *Transcript) ReadSince(lastSeen uint64) ([]CaptionEvent, uint64) {
	head := t.Head()
	if lastSeen >= head {
		return []CaptionEvent{}, head
	}
	out := make([]CaptionEvent, head-lastSeen)
	copy(out, t.events[lastSeen:])
	return out, head
}

// Get returns the event with the given sequence number.
func (t *Transcript) Get(seq uint64) (CaptionEvent, bool) {
	if seq == 0 || seq > t.Head() {
		return CaptionEvent{}, false
	}
	return t.events[seq-1], true
}
