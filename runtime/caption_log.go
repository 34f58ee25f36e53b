package runtime

import (
	"fmt"
	"log/slog"
	"meet-lab/domain/event"
	"meet-lab/domain/meeting"
	"meet-lab/errors"
	"time"

	"github.com/google/uuid"
)

// CaptionFilter rewrites caption text before it is stored and detects its language.
type CaptionFilter interface {
	Filter(text string) (sanitized string, lang string)
}

type passthrough struct{}

func (passthrough) Filter(text string) (string, string) { return text, "" }

// CaptionLog appends to and tails the per-meeting transcripts.
// Sequence numbers are assigned under the meeting lock, so concurrent appenders
// on one meeting serialize without lost updates or shared numbers.
type CaptionLog struct {
	log            *slog.Logger
	registry       *MeetingRegistry
	publisher      Publisher
	filter         CaptionFilter
	systemCaptions bool
	now            func() time.Time
}

func NewCaptionLog(log *slog.Logger, registry *MeetingRegistry, publisher Publisher,
	filter CaptionFilter, systemCaptions bool, now func() time.Time) *CaptionLog {
	if filter == nil {
		filter = passthrough{}
	}
	return &CaptionLog{
		log:            log,
		registry:       registry,
		publisher:      publisher,
		filter:         filter,
		systemCaptions: systemCaptions,
		now:            now,
	}
}

// Append stores an utterance of a current member. The stored speaker uses the
// casing the member joined with.
func (c *CaptionLog) Append(id meeting.MeetingID, speaker, text string) (meeting.CaptionEvent, error) {
	// Filtering is CPU bound, keep it out of the critical section.
	sanitized, lang := c.filter.Filter(text)

	var appended meeting.CaptionEvent
	err := c.registry.Mutate(id, func(room *Room) error {
		member, ok := room.Roster.Get(speaker)
		if !ok {
			return errors.New(errors.ErrSpeakerNotMember, id.String(), speaker)
		}
		appended = c.append(room, member.Name, sanitized, lang)
		return nil
	})
	if err != nil {
		return meeting.CaptionEvent{}, err
	}
	c.log.Debug("Caption appended", "meeting_id", id, "seq", appended.Seq, "speaker", appended.Speaker)
	return appended, nil
}

// ReadSince returns the events strictly after lastSeen and the new offset.
func (c *CaptionLog) ReadSince(id meeting.MeetingID, lastSeen uint64) ([]meeting.CaptionEvent, uint64, error) {
	var (
		events []meeting.CaptionEvent
		head   uint64
	)
	err := c.registry.View(id, func(room *Room) error {
		events, head = room.Transcript.ReadSince(lastSeen)
		return nil
	})
	return events, head, err
}

// Head is the last sequence number of the meeting, 0 when nothing was said.
func (c *CaptionLog) Head(id meeting.MeetingID) (uint64, error) {
	var head uint64
	err := c.registry.View(id, func(room *Room) error {
		head = room.Transcript.Head()
		return nil
	})
	return head, err
}

// announce writes a membership change to the transcript when system captions are on.
// Must be called with the meeting locked.
func (c *CaptionLog) announce(room *Room, verb, name string) {
	if !c.systemCaptions {
		return
	}
	c.append(room, meeting.SystemSpeaker, fmt.Sprintf("%s %s", name, verb), "en")
}

func (c *CaptionLog) append(room *Room, speaker, text, lang string) meeting.CaptionEvent {
	appended := room.Transcript.Append(meeting.CaptionEvent{
		ID:        uuid.New(),
		MeetingID: room.Meeting.ID,
		Speaker:   speaker,
		Text:      text,
		Lang:      lang,
		At:        c.now(),
	})
	c.publisher.Publish(event.CaptionAppended{Caption: appended})
	return appended
}
