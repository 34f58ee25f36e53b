package repositories

import (
	"fmt"
	"meet-lab/domain/meeting"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Values are stored as protobuf Struct messages. Timestamps are kept in microseconds
// so they stay exact inside a protobuf double.

func marshal(fields map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func unmarshal(value []byte) (map[string]*structpb.Value, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(value, &s); err != nil {
		return nil, err
	}
	return s.GetFields(), nil
}

func fromMicros(v *structpb.Value) time.Time {
	return time.UnixMicro(int64(v.GetNumberValue())).UTC()
}

func encodeMeeting(m meeting.Meeting) ([]byte, error) {
	return marshal(map[string]any{
		"id":        m.ID.String(),
		"host":      m.HostName,
		"createdAt": m.CreatedAt.UnixMicro(),
		"state":     string(m.State),
	})
}

func decodeMeeting(value []byte) (meeting.Meeting, error) {
	f, err := unmarshal(value)
	if err != nil {
		return meeting.Meeting{}, err
	}
	return meeting.Meeting{
		ID:        meeting.MeetingID(f["id"].GetStringValue()),
		HostName:  f["host"].GetStringValue(),
		CreatedAt: fromMicros(f["createdAt"]),
		State:     meeting.State(f["state"].GetStringValue()),
	}, nil
}

func encodeParticipant(p meeting.Participant) ([]byte, error) {
	return marshal(map[string]any{
		"name":     p.Name,
		"isHost":   p.IsHost,
		"micOn":    p.Devices.MicOn,
		"cameraOn": p.Devices.CameraOn,
		"joinedAt": p.JoinedAt.UnixMicro(),
		"position": p.Position,
	})
}

func decodeParticipant(value []byte) (meeting.Participant, error) {
	f, err := unmarshal(value)
	if err != nil {
		return meeting.Participant{}, err
	}
	return meeting.Participant{
		Name:   f["name"].GetStringValue(),
		IsHost: f["isHost"].GetBoolValue(),
		Devices: meeting.Devices{
			MicOn:    f["micOn"].GetBoolValue(),
			CameraOn: f["cameraOn"].GetBoolValue(),
		},
		JoinedAt: fromMicros(f["joinedAt"]),
		Position: int(f["position"].GetNumberValue()),
	}, nil
}

func encodeCaption(c meeting.CaptionEvent) ([]byte, error) {
	return marshal(map[string]any{
		"id":      c.ID.String(),
		"seq":     c.Seq,
		"speaker": c.Speaker,
		"text":    c.Text,
		"lang":    c.Lang,
		"at":      c.At.UnixMicro(),
	})
}

func decodeCaption(value []byte) (meeting.CaptionEvent, error) {
	f, err := unmarshal(value)
	if err != nil {
		return meeting.CaptionEvent{}, err
	}
	id, err := uuid.Parse(f["id"].GetStringValue())
	if err != nil {
		return meeting.CaptionEvent{}, err
	}
	return meeting.CaptionEvent{
		ID:      id,
		Seq:     uint64(f["seq"].GetNumberValue()),
		Speaker: f["speaker"].GetStringValue(),
		Text:    f["text"].GetStringValue(),
		Lang:    f["lang"].GetStringValue(),
		At:      fromMicros(f["at"]),
	}, nil
}

// Record is a readable view of one stored key, used by the inspectors.
type Record struct {
	Key       string
	Type      string
	MeetingID string
	At        time.Time
	Detail    string
}

// Describe decodes a raw badger entry written by MeetingRepository.
func Describe(key string, value []byte) (Record, error) {
	r := Record{Key: key}
	parts := strings.SplitN(key, ":", 3)
	if len(parts) > 1 {
		r.MeetingID = parts[1]
	}
	switch parts[0] {
	case "meeting":
		m, err := decodeMeeting(value)
		if err != nil {
			return r, err
		}
		r.Type, r.At = "MEETING", m.CreatedAt
		r.Detail = fmt.Sprintf("host=%s state=%s", m.HostName, m.State)
	case "participant":
		p, err := decodeParticipant(value)
		if err != nil {
			return r, err
		}
		r.Type, r.At = "PARTICIPANT", p.JoinedAt
		r.Detail = fmt.Sprintf("#%d %s host=%t mic=%t camera=%t", p.Position, p.Name, p.IsHost, p.Devices.MicOn, p.Devices.CameraOn)
	case "caption":
		c, err := decodeCaption(value)
		if err != nil {
			return r, err
		}
		r.Type, r.At = "CAPTION", c.At
		r.Detail = fmt.Sprintf("#%d %s: %s", c.Seq, c.Speaker, c.Text)
	default:
		r.Type = "UNKNOWN"
	}
	return r, nil
}
