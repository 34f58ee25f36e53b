// Package api holds the JSON documents exchanged over the HTTP and WebSocket API.
package api

import (
	"meet-lab/domain/meeting"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Meeting struct {
	ID           string    `json:"id"`
	HostName     string    `json:"hostName"`
	CreatedAt    time.Time `json:"createdAt"`
	State        string    `json:"state"`
	Participants int       `json:"participants,omitempty"`
	LastSeq      uint64    `json:"lastSeq"`
}

type Participant struct {
	Name     string    `json:"name"`
	IsHost   bool      `json:"isHost"`
	MicOn    bool      `json:"micOn"`
	CameraOn bool      `json:"cameraOn"`
	JoinedAt time.Time `json:"joinedAt"`
	Position int       `json:"position"`
}

type Caption struct {
	ID        uuid.UUID `json:"id"`
	MeetingID string    `json:"meetingId"`
	Seq       uint64    `json:"seq"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Lang      string    `json:"lang,omitempty"`
	At        time.Time `json:"at"`
}

type CreateMeetingRequest struct {
	HostName string `json:"hostName"`
}

type CreateMeetingResponse struct {
	Meeting Meeting     `json:"meeting"`
	Host    Participant `json:"host"`
}

type JoinMeetingRequest struct {
	Name string `json:"name"`
}

type JoinMeetingResponse struct {
	Participant  Participant   `json:"participant"`
	Participants []Participant `json:"participants"`
}

type EndMeetingRequest struct {
	RequesterName string `json:"requesterName"`
}

type UpdateDevicesRequest struct {
	MicOn    bool `json:"micOn"`
	CameraOn bool `json:"cameraOn"`
}

type AppendCaptionRequest struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

type CaptionsResponse struct {
	Captions []Caption `json:"captions"`
	LastSeq  uint64    `json:"lastSeq"`
}

// Error carries the kind and the offending identifier or name, never a message.
type Error struct {
	Kind      string `json:"kind"`
	Code      string `json:"code"`
	MeetingID string `json:"meetingId,omitempty"`
	Name      string `json:"name,omitempty"`
}

const (
	StreamCaptions = "captions"
	StreamEnded    = "ended"
	StreamLeft     = "left"
)

// StreamMessage is pushed on the caption stream.
type StreamMessage struct {
	Type     string    `json:"type"`
	Captions []Caption `json:"captions,omitempty"`
	LastSeq  uint64    `json:"lastSeq"`
}

func FromMeeting(m meeting.Meeting) Meeting {
	return Meeting{ID: m.ID.String(), HostName: m.HostName, CreatedAt: m.CreatedAt, State: string(m.State)}
}

func FromSummary(s meeting.Summary) Meeting {
	out := FromMeeting(s.Meeting)
	out.Participants = s.Participants
	out.LastSeq = s.LastSeq
	return out
}

func FromParticipant(p meeting.Participant) Participant {
	return Participant{
		Name:     p.Name,
		IsHost:   p.IsHost,
		MicOn:    p.Devices.MicOn,
		CameraOn: p.Devices.CameraOn,
		JoinedAt: p.JoinedAt,
		Position: p.Position,
	}
}

func FromParticipants(participants []meeting.Participant) []Participant {
	return lo.Map(participants, func(p meeting.Participant, _ int) Participant { return FromParticipant(p) })
}

func FromCaption(c meeting.CaptionEvent) Caption {
	return Caption{
		ID:        c.ID,
		MeetingID: c.MeetingID.String(),
		Seq:       c.Seq,
		Speaker:   c.Speaker,
		Text:      c.Text,
		Lang:      c.Lang,
		At:        c.At,
	}
}

func FromCaptions(captions []meeting.CaptionEvent) []Caption {
	return lo.Map(captions, func(c meeting.CaptionEvent, _ int) Caption { return FromCaption(c) })
}

func (c Caption) ToDomain() meeting.CaptionEvent {
	return meeting.CaptionEvent{
		ID:        c.ID,
		MeetingID: meeting.MeetingID(c.MeetingID),
		Seq:       c.Seq,
		Speaker:   c.Speaker,
		Text:      c.Text,
		Lang:      c.Lang,
		At:        c.At,
	}
}

func (p Participant) ToDomain() meeting.Participant {
	return meeting.Participant{
		Name:     p.Name,
		IsHost:   p.IsHost,
		Devices:  meeting.Devices{MicOn: p.MicOn, CameraOn: p.CameraOn},
		JoinedAt: p.JoinedAt,
		Position: p.Position,
	}
}
