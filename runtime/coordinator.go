package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"meet-lab/contract"
	"meet-lab/domain/event"
	"meet-lab/domain/meeting"
	"meet-lab/errors"
	"meet-lab/repositories"
	"meet-lab/sink"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	maxIDAttempts           = 10
	DefaultMaxCaptionLength = 500
)

type CoordinatorConfig struct {
	SystemCaptions   bool
	MaxCaptionLength int
	Filter           CaptionFilter
	Index            contract.ITranscriptIndex
	Repository       repositories.IMeetingRepository
	Subscriptions    contract.ISubscriptionRegistry
	Now              func() time.Time
}

// Coordinator is the boundary of the meeting core. Every input is validated and
// normalized here, then routed to the registry, the membership manager or the
// caption log. Errors are returned as *errors.MeetingError.
type Coordinator struct {
	log              *slog.Logger
	registry         *MeetingRegistry
	ids              contract.IDGenerator
	publisher        Publisher
	membership       *MembershipManager
	captions         *CaptionLog
	index            contract.ITranscriptIndex
	repository       repositories.IMeetingRepository
	subscriptions    contract.ISubscriptionRegistry
	validator        *validator.Validate
	maxCaptionLength int
	now              func() time.Time
}

func NewCoordinator(log *slog.Logger, registry *MeetingRegistry, ids contract.IDGenerator,
	publisher Publisher, cfg CoordinatorConfig) *Coordinator {
	if publisher == nil {
		publisher = Discard
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.MaxCaptionLength <= 0 {
		cfg.MaxCaptionLength = DefaultMaxCaptionLength
	}
	if cfg.Subscriptions == nil {
		cfg.Subscriptions = NewSubscriptionRegistry()
	}
	captions := NewCaptionLog(log, registry, publisher, cfg.Filter, cfg.SystemCaptions, cfg.Now)
	return &Coordinator{
		log:              log,
		registry:         registry,
		ids:              ids,
		publisher:        publisher,
		membership:       NewMembershipManager(log, registry, publisher, captions, cfg.Now),
		captions:         captions,
		index:            cfg.Index,
		repository:       cfg.Repository,
		subscriptions:    cfg.Subscriptions,
		validator:        validator.New(),
		maxCaptionLength: cfg.MaxCaptionLength,
		now:              cfg.Now,
	}
}

// CreateMeeting allocates a fresh identifier and registers a meeting whose only
// member is its host.
func (c *Coordinator) CreateMeeting(hostName string) (meeting.Meeting, meeting.Participant, error) {
	hostName = strings.TrimSpace(hostName)
	if err := c.check(meeting.CreateMeetingCommand{HostName: hostName}, "", hostName); err != nil {
		return meeting.Meeting{}, meeting.Participant{}, err
	}
	if meeting.IsReserved(hostName) {
		return meeting.Meeting{}, meeting.Participant{}, errors.New(errors.ErrReservedName, "", hostName)
	}

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id, err := c.ids.Generate()
		if err != nil {
			c.log.Error("Meeting id generation failed", "attempt", attempt, "error", err)
			return meeting.Meeting{}, meeting.Participant{}, errors.New(errors.ErrIDGeneration, "", hostName)
		}
		if c.registry.Exists(id) {
			c.log.Debug("Meeting id collision", "meeting_id", id, "attempt", attempt)
			continue
		}
		m, host, err := c.registry.Create(id, hostName, func(room *Room) {
			host, _ := room.Roster.Get(hostName)
			c.publisher.Publish(event.MeetingCreated{Meeting: room.Meeting, Host: host})
		})
		if errors.Is(err, errors.ErrDuplicateMeeting) {
			// lost a race with a concurrent create on the same identifier
			continue
		}
		if err != nil {
			return meeting.Meeting{}, meeting.Participant{}, err
		}
		c.log.Info("Meeting created", "meeting_id", m.ID, "host", host.Name)
		return m, host, nil
	}

	c.log.Warn("Meeting identifier space exhausted", "attempts", maxIDAttempts)
	return meeting.Meeting{}, meeting.Participant{}, errors.New(errors.ErrExhaustedIDSpace, "", hostName)
}

// JoinMeeting returns the new participant and the membership at join time.
func (c *Coordinator) JoinMeeting(rawID, name string) (meeting.Participant, []meeting.Participant, error) {
	id, name := meeting.NormalizeID(rawID), strings.TrimSpace(name)
	if err := c.check(meeting.JoinMeetingCommand{MeetingID: id.String(), Name: name}, id.String(), name); err != nil {
		return meeting.Participant{}, nil, err
	}
	return c.membership.Join(id, name)
}

func (c *Coordinator) LeaveMeeting(rawID, name string) error {
	id, name := meeting.NormalizeID(rawID), strings.TrimSpace(name)
	if err := c.check(meeting.LeaveMeetingCommand{MeetingID: id.String(), Name: name}, id.String(), name); err != nil {
		return err
	}
	return c.membership.Leave(id, name)
}

// EndMeeting terminates a meeting on behalf of its host. Membership and transcript
// are discarded and the identifier becomes unknown.
func (c *Coordinator) EndMeeting(rawID, requesterName string) error {
	id, requesterName := meeting.NormalizeID(rawID), strings.TrimSpace(requesterName)
	cmd := meeting.EndMeetingCommand{MeetingID: id.String(), RequesterName: requesterName}
	if err := c.check(cmd, id.String(), requesterName); err != nil {
		return err
	}
	return c.end(id, event.EndedByHost, func(room *Room) error {
		if !room.Roster.IsHost(requesterName) {
			return errors.New(errors.ErrNotHost, id.String(), requesterName)
		}
		return nil
	})
}

// Expire ends a meeting without a host check.
func (c *Coordinator) Expire(id meeting.MeetingID) error {
	return c.end(id, event.EndedIdle, nil)
}

// ExpireIdle ends every meeting with no activity since cutoff and returns their identifiers.
func (c *Coordinator) ExpireIdle(cutoff time.Time) []meeting.MeetingID {
	var expired []meeting.MeetingID
	for _, id := range c.registry.IdleSince(cutoff) {
		if err := c.Expire(id); err != nil {
			c.log.Debug("Idle meeting already gone", "meeting_id", id, "error", err)
			continue
		}
		expired = append(expired, id)
	}
	return expired
}

func (c *Coordinator) end(id meeting.MeetingID, reason event.EndReason, guard func(*Room) error) error {
	_, err := c.registry.End(id, func(room *Room) error {
		if guard != nil {
			if err := guard(room); err != nil {
				return err
			}
		}
		c.publisher.Publish(event.MeetingEnded{
			Meeting: id,
			LastSeq: room.Transcript.Head(),
			Reason:  reason,
			At:      c.now(),
		})
		return nil
	})
	if err != nil {
		return err
	}
	c.log.Info("Meeting ended", "meeting_id", id, "reason", reason)
	return nil
}

// GetMembership returns the members in join order, host first.
func (c *Coordinator) GetMembership(rawID string) ([]meeting.Participant, error) {
	id, err := c.meetingID(rawID)
	if err != nil {
		return nil, err
	}
	return c.membership.Snapshot(id)
}

func (c *Coordinator) GetMeeting(rawID string) (meeting.Summary, error) {
	id, err := c.meetingID(rawID)
	if err != nil {
		return meeting.Summary{}, err
	}
	return c.registry.Summary(id)
}

// UpdateDevices records the advisory microphone/camera state of a participant.
func (c *Coordinator) UpdateDevices(rawID, name string, devices meeting.Devices) (meeting.Participant, error) {
	id, name := meeting.NormalizeID(rawID), strings.TrimSpace(name)
	cmd := meeting.UpdateDevicesCommand{MeetingID: id.String(), Name: name, Devices: devices}
	if err := c.check(cmd, id.String(), name); err != nil {
		return meeting.Participant{}, err
	}
	return c.membership.SetDevices(id, name, devices)
}

// AppendCaption stores an utterance of a current member and returns it with its sequence number.
func (c *Coordinator) AppendCaption(rawID, speaker, text string) (meeting.CaptionEvent, error) {
	// the text is stored as spoken, blank utterances are rejected
	id, speaker := meeting.NormalizeID(rawID), strings.TrimSpace(speaker)
	cmd := meeting.AppendCaptionCommand{MeetingID: id.String(), Speaker: speaker, Text: strings.TrimSpace(text)}
	if err := c.check(cmd, id.String(), speaker); err != nil {
		return meeting.CaptionEvent{}, err
	}
	if err := c.validator.Var(text, fmt.Sprintf("max=%d", c.maxCaptionLength)); err != nil {
		return meeting.CaptionEvent{}, errors.New(errors.ErrInvalidCaption, id.String(), speaker)
	}
	return c.captions.Append(id, speaker, text)
}

// ReadCaptionsSince returns the events after lastSeenSeq in sequence order and the
// offset to pass on the next call.
func (c *Coordinator) ReadCaptionsSince(rawID string, lastSeenSeq uint64) ([]meeting.CaptionEvent, uint64, error) {
	id, err := c.meetingID(rawID)
	if err != nil {
		return nil, 0, err
	}
	return c.captions.ReadSince(id, lastSeenSeq)
}

// SearchCaptions returns the captions matching query in sequence order.
// The index lags the caption log by at most one flush.
func (c *Coordinator) SearchCaptions(ctx context.Context, rawID, query string, limit int) ([]meeting.CaptionEvent, error) {
	id, err := c.meetingID(rawID)
	if err != nil {
		return nil, err
	}
	if !c.registry.Exists(id) {
		return nil, errors.New(errors.ErrMeetingNotFound, id.String(), "")
	}
	query = strings.TrimSpace(query)
	if query == "" || c.index == nil {
		return []meeting.CaptionEvent{}, nil
	}

	seqs, err := c.index.Search(ctx, id, query, limit)
	if err != nil {
		return nil, err
	}
	var found []meeting.CaptionEvent
	err = c.registry.View(id, func(room *Room) error {
		found = lo.FilterMap(seqs, func(seq uint64, _ int) (meeting.CaptionEvent, bool) {
			return room.Transcript.Get(seq)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Subscription notifies a reader that a meeting changed. Readers pull the
// changes with ReadCaptionsSince.
type Subscription struct {
	ID        string
	MeetingID meeting.MeetingID
	sink      *sink.SubscriberSink
	release   func()
}

func (s *Subscription) Wake() <-chan struct{} { return s.sink.Wake() }

// Done is closed when the subscription is closed or the meeting ended.
func (s *Subscription) Done() <-chan struct{} { return s.sink.Done() }

// Left reports whether the subscription was released because its participant left.
func (s *Subscription) Left() bool { return s.sink.Reason() == sink.ReasonLeft }

func (s *Subscription) Close() {
	s.release()
	s.sink.Close()
}

// Subscribe attaches a listener to a meeting. The subscription is registered under
// the meeting lock so that a concurrent end always releases it.
func (c *Coordinator) Subscribe(rawID string) (*Subscription, error) {
	return c.subscribe(rawID, "")
}

// SubscribeAs attaches a listener on behalf of a current member. The subscription
// is also released when that member leaves.
func (c *Coordinator) SubscribeAs(rawID, name string) (*Subscription, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.ErrInvalidName, meeting.NormalizeID(rawID).String(), name)
	}
	return c.subscribe(rawID, name)
}

func (c *Coordinator) subscribe(rawID, name string) (*Subscription, error) {
	id, err := c.meetingID(rawID)
	if err != nil {
		return nil, err
	}
	listener := sink.NewSubscriberSink()
	if name != "" {
		listener = sink.NewParticipantSink(name)
	}
	sub := &Subscription{ID: uuid.NewString(), MeetingID: id, sink: listener}
	sub.release = func() { c.subscriptions.Unsubscribe(sub.ID, id) }

	err = c.registry.View(id, func(room *Room) error {
		if name != "" {
			if _, ok := room.Roster.Get(name); !ok {
				return errors.New(errors.ErrParticipantNotFound, id.String(), name)
			}
		}
		c.subscriptions.Subscribe(sub.ID, id, sub.sink)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug("Transcript subscription opened", "meeting_id", id, "subscription_id", sub.ID, "participant", name)
	return sub, nil
}

// Restore reloads the active meetings persisted by the disk sink.
// Meetings whose host record is missing cannot satisfy the membership invariants
// and are purged from storage.
func (c *Coordinator) Restore(ctx context.Context) (int, error) {
	if c.repository == nil {
		return 0, nil
	}
	meetings, err := c.repository.ListMeetings()
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, m := range meetings {
		if ctx.Err() != nil {
			return restored, ctx.Err()
		}
		if err := c.restore(m); err != nil {
			c.log.Warn("Unable to restore meeting", "meeting_id", m.ID, "error", err)
			if delErr := c.repository.DeleteMeeting(m.ID); delErr != nil {
				c.log.Error("Unable to purge meeting", "meeting_id", m.ID, "error", delErr)
			}
			continue
		}
		restored++
	}
	c.log.Info("Meetings restored", "count", restored)
	return restored, nil
}

func (c *Coordinator) restore(m meeting.Meeting) error {
	participants, err := c.repository.GetParticipants(m.ID)
	if err != nil {
		return err
	}
	if len(participants) == 0 || !participants[0].IsHost {
		return errors.New(errors.ErrParticipantNotFound, m.ID.String(), m.HostName)
	}
	captions, err := c.repository.GetCaptions(m.ID, 0, 0)
	if err != nil {
		return err
	}

	room := Room{
		Meeting:    m,
		Roster:     meeting.RestoreRoster(participants),
		Transcript: meeting.RestoreTranscript(captions),
	}
	room.Meeting.State = meeting.StateActive
	if err := c.registry.Restore(room); err != nil {
		return err
	}
	if c.index != nil && room.Transcript.Head() > 0 {
		restoredCaptions, _ := room.Transcript.ReadSince(0)
		if err := c.index.Index(restoredCaptions...); err != nil {
			c.log.Warn("Unable to reindex restored captions", "meeting_id", m.ID, "error", err)
		}
	}
	return nil
}

// Stats counts active meetings and their participants.
func (c *Coordinator) Stats() (meetings, participants int) {
	return c.registry.Stats()
}

func (c *Coordinator) meetingID(rawID string) (meeting.MeetingID, error) {
	id := meeting.NormalizeID(rawID)
	if !id.Valid() {
		return "", errors.New(errors.ErrInvalidMeetingID, id.String(), "")
	}
	return id, nil
}

// check validates a command and maps the first failing field to its sentinel.
func (c *Coordinator) check(cmd any, meetingID, name string) error {
	err := c.validator.Struct(cmd)
	if err == nil {
		if meetingID != "" && !meeting.MeetingID(meetingID).Valid() {
			return errors.New(errors.ErrInvalidMeetingID, meetingID, name)
		}
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	switch fieldErrs[0].Field() {
	case "MeetingID":
		return errors.New(errors.ErrInvalidMeetingID, meetingID, name)
	case "Text":
		return errors.New(errors.ErrInvalidCaption, meetingID, name)
	default:
		return errors.New(errors.ErrInvalidName, meetingID, name)
	}
}
