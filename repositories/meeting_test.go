package repositories

import (
	"log/slog"
	"meet-lab/domain/meeting"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newRepository(t *testing.T) *MeetingRepository {
	return NewMeetingRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug))
}

func Test_Save_And_List_Meetings(t *testing.T) {
	req := require.New(t)
	repository := newRepository(t)
	at := time.Now().UTC().Truncate(time.Microsecond)

	m := meeting.Meeting{ID: "K3F9QZ1B", HostName: "Alice", CreatedAt: at, State: meeting.StateActive}
	req.NoError(repository.SaveMeeting(m))

	meetings, err := repository.ListMeetings()
	req.NoError(err)
	req.Equal([]meeting.Meeting{m}, meetings)
}

func Test_Participants_Are_Returned_In_Join_Order(t *testing.T) {
	req := require.New(t)
	repository := newRepository(t)
	id := meeting.MeetingID("K3F9QZ1B")
	at := time.Now().UTC().Truncate(time.Microsecond)

	// Given participants stored out of order, with names sorting differently
	participants := []meeting.Participant{
		{Name: "Zoe", Position: 2, JoinedAt: at, Devices: meeting.Devices{MicOn: true}},
		{Name: "Bob", Position: 1, JoinedAt: at, Devices: meeting.Devices{CameraOn: true}},
		{Name: "Yann", IsHost: true, Position: 0, JoinedAt: at},
	}
	for _, p := range participants {
		req.NoError(repository.SaveParticipant(id, p))
	}

	// When fetching them
	fetched, err := repository.GetParticipants(id)
	req.NoError(err)

	// Then the host comes first, followed by join order
	req.Len(fetched, 3)
	req.Equal("Yann", fetched[0].Name)
	req.Equal("Bob", fetched[1].Name)
	req.Equal("Zoe", fetched[2].Name)
	req.True(fetched[1].Devices.CameraOn)
	req.False(fetched[1].Devices.MicOn)

	// When one leaves
	req.NoError(repository.DeleteParticipant(id, "BOB"))
	fetched, err = repository.GetParticipants(id)
	req.NoError(err)
	req.Len(fetched, 2)
}

func Test_Captions_Are_Sorted_By_Sequence(t *testing.T) {
	req := require.New(t)
	repository := newRepository(t)
	id := meeting.MeetingID("K3F9QZ1B")
	at := time.Now().UTC().Truncate(time.Microsecond)

	// Given more than ten captions so that padding matters
	var stored []meeting.CaptionEvent
	for seq := uint64(12); seq >= 1; seq-- {
		c := meeting.CaptionEvent{
			ID: uuid.New(), MeetingID: id, Seq: seq,
			Speaker: "Alice", Text: "caption", Lang: "en", At: at,
		}
		req.NoError(repository.StoreCaption(c))
		stored = append([]meeting.CaptionEvent{c}, stored...)
	}

	// When fetching the full transcript
	captions, err := repository.GetCaptions(id, 0, 0)
	req.NoError(err)
	req.Equal(stored, captions)

	// When tailing with a limit
	tail, err := repository.GetCaptions(id, 9, 2)
	req.NoError(err)
	req.Len(tail, 2)
	req.Equal(uint64(10), tail[0].Seq)
	req.Equal(uint64(11), tail[1].Seq)
}

func Test_Delete_Meeting_Removes_Everything_It_Owns(t *testing.T) {
	req := require.New(t)
	repository := newRepository(t)
	id := meeting.MeetingID("AAAA1111")
	other := meeting.MeetingID("BBBB2222")
	at := time.Now().UTC()

	for _, mid := range []meeting.MeetingID{id, other} {
		req.NoError(repository.SaveMeeting(meeting.Meeting{ID: mid, HostName: "Alice", CreatedAt: at, State: meeting.StateActive}))
		req.NoError(repository.SaveParticipant(mid, meeting.Participant{Name: "Alice", IsHost: true, JoinedAt: at}))
		req.NoError(repository.StoreCaption(meeting.CaptionEvent{ID: uuid.New(), MeetingID: mid, Seq: 1, Speaker: "Alice", Text: "hi", At: at}))
	}

	// When the first meeting is deleted
	req.NoError(repository.DeleteMeeting(id))

	// Then nothing remains for it
	meetings, err := repository.ListMeetings()
	req.NoError(err)
	req.Len(meetings, 1)
	req.Equal(other, meetings[0].ID)

	participants, err := repository.GetParticipants(id)
	req.NoError(err)
	req.Empty(participants)

	captions, err := repository.GetCaptions(id, 0, 0)
	req.NoError(err)
	req.Empty(captions)

	// And the other meeting is untouched
	captions, err = repository.GetCaptions(other, 0, 0)
	req.NoError(err)
	req.Len(captions, 1)
}

func Test_Describe_Records(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC().Truncate(time.Microsecond)

	value, err := encodeCaption(meeting.CaptionEvent{ID: uuid.New(), Seq: 7, Speaker: "Bob", Text: "hello", At: at})
	req.NoError(err)
	record, err := Describe(string(captionKey("K3F9QZ1B", 7)), value)
	req.NoError(err)
	req.Equal("CAPTION", record.Type)
	req.Equal("K3F9QZ1B", record.MeetingID)
	req.Equal(at, record.At)
	req.Equal("#7 Bob: hello", record.Detail)

	value, err = encodeMeeting(meeting.Meeting{ID: "K3F9QZ1B", HostName: "Alice", CreatedAt: at, State: meeting.StateActive})
	req.NoError(err)
	record, err = Describe(string(meetingKey("K3F9QZ1B")), value)
	req.NoError(err)
	req.Equal("MEETING", record.Type)
	req.Equal("host=Alice state=ACTIVE", record.Detail)

	_, err = Describe("caption:K3F9QZ1B:1", []byte("not a protobuf"))
	req.Error(err)
}
