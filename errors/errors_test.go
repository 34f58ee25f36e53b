package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeetingError_Classification(t *testing.T) {
	req := require.New(t)

	err := fmt.Errorf("join: %w", New(ErrDuplicateName, "K3F9QZ1B", "alice"))

	req.ErrorIs(err, ErrDuplicateName)
	req.Equal(KindConflict, KindOf(err))
	var me *MeetingError
	req.True(As(err, &me))
	req.Equal("duplicate_name", me.Code())
	req.Equal("duplicate name: meeting=K3F9QZ1B name=alice", me.Error())

	req.Equal(KindNotFound, KindOf(ErrMeetingNotFound))
	req.Equal(KindUnknown, KindOf(ErrWorkerPanic))
}

func TestFromCode(t *testing.T) {
	req := require.New(t)

	err := FromCode("exhausted_id_space", "", "Alice")
	req.ErrorIs(err, ErrExhaustedIDSpace)
	req.Equal(KindExhaustion, err.Kind)
	req.Equal("Alice", err.Name)

	unknown := FromCode("internal", "K3F9QZ1B", "")
	req.Equal(KindUnknown, unknown.Kind)
	req.Equal("internal", unknown.Code())
}
