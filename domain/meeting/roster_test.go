package meeting

import (
	"meet-lab/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoster_Host_Is_First_Participant(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()

	roster := NewRoster("Alice", at)

	snapshot := roster.Snapshot()
	req.Len(snapshot, 1)
	req.Equal("Alice", snapshot[0].Name)
	req.True(snapshot[0].IsHost)
	req.Equal(0, snapshot[0].Position)
	req.True(roster.IsHost("alice"))
}

func TestRoster_Add_Keeps_Join_Order(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	roster := NewRoster("Alice", at)

	bob, err := roster.Add("Bob", at.Add(time.Second))
	req.NoError(err)
	clara, err := roster.Add("Clara", at.Add(2*time.Second))
	req.NoError(err)

	req.False(bob.IsHost)
	req.Equal(1, bob.Position)
	req.Equal(2, clara.Position)

	names := []string{}
	for _, p := range roster.Snapshot() {
		names = append(names, p.Name)
	}
	req.Equal([]string{"Alice", "Bob", "Clara"}, names)
}

func TestRoster_Add_Rejects_Duplicate_Name_Case_Insensitive(t *testing.T) {
	req := require.New(t)
	roster := NewRoster("Alice", time.Now())

	// Given Bob already joined
	_, err := roster.Add("Bob", time.Now())
	req.NoError(err)

	// When a second Bob joins with another casing
	_, err = roster.Add("bOB", time.Now())

	// Then the join is rejected and membership is unchanged
	req.ErrorIs(err, errors.ErrDuplicateName)
	req.Equal(2, roster.Len())

	_, err = roster.Add("ALICE", time.Now())
	req.ErrorIs(err, errors.ErrDuplicateName)
}

func TestRoster_Add_Rejects_Reserved_Name(t *testing.T) {
	req := require.New(t)
	roster := NewRoster("Alice", time.Now())

	_, err := roster.Add("system", time.Now())

	req.ErrorIs(err, errors.ErrReservedName)
	req.Equal(1, roster.Len())
}

func TestRoster_Remove(t *testing.T) {
	req := require.New(t)
	roster := NewRoster("Alice", time.Now())
	_, err := roster.Add("Bob", time.Now())
	req.NoError(err)

	removed, err := roster.Remove("BOB")
	req.NoError(err)
	req.Equal("Bob", removed.Name)
	req.False(roster.Contains("Bob"))

	_, err = roster.Remove("Bob")
	req.ErrorIs(err, errors.ErrParticipantNotFound)
}

func TestRoster_Remove_Host_Is_Refused(t *testing.T) {
	req := require.New(t)
	roster := NewRoster("Alice", time.Now())

	_, err := roster.Remove("Alice")

	req.ErrorIs(err, errors.ErrHostCannotLeave)
	req.True(roster.IsHost("Alice"))
}

func TestRoster_Rejoin_Gets_New_Position(t *testing.T) {
	req := require.New(t)
	roster := NewRoster("Alice", time.Now())
	_, err := roster.Add("Bob", time.Now())
	req.NoError(err)
	_, err = roster.Remove("Bob")
	req.NoError(err)

	bob, err := roster.Add("Bob", time.Now())
	req.NoError(err)
	req.Equal(2, bob.Position)
}

func TestRoster_SetDevices(t *testing.T) {
	req := require.New(t)
	roster := NewRoster("Alice", time.Now())

	p, err := roster.SetDevices("alice", Devices{MicOn: false, CameraOn: true})
	req.NoError(err)
	req.False(p.Devices.MicOn)
	req.True(p.Devices.CameraOn)

	_, err = roster.SetDevices("Nobody", Devices{})
	req.ErrorIs(err, errors.ErrParticipantNotFound)
}

func TestRoster_Snapshot_Is_A_Copy(t *testing.T) {
	req := require.New(t)
	roster := NewRoster("Alice", time.Now())

	snapshot := roster.Snapshot()
	snapshot[0].Name = "Mallory"

	req.True(roster.Contains("Alice"))
}

func TestRestoreRoster_Continues_Positions(t *testing.T) {
	req := require.New(t)
	roster := RestoreRoster([]Participant{
		{Name: "Alice", IsHost: true, Position: 0},
		{Name: "Clara", Position: 4},
	})

	p, err := roster.Add("Dan", time.Now())
	req.NoError(err)
	req.Equal(5, p.Position)
}
