package meeting

// Commands carry boundary input after normalization; their tags are checked by the coordinator.

type CreateMeetingCommand struct {
	HostName string `validate:"required,max=30"`
}

type JoinMeetingCommand struct {
	MeetingID string `validate:"required,max=8,alphanum"`
	Name      string `validate:"required,max=30"`
}

type LeaveMeetingCommand struct {
	MeetingID string `validate:"required,max=8,alphanum"`
	Name      string `validate:"required,max=30"`
}

type EndMeetingCommand struct {
	MeetingID     string `validate:"required,max=8,alphanum"`
	RequesterName string `validate:"required,max=30"`
}

type AppendCaptionCommand struct {
	MeetingID string `validate:"required,max=8,alphanum"`
	Speaker   string `validate:"required,max=30"`
	Text      string `validate:"required"`
}

type UpdateDevicesCommand struct {
	MeetingID string `validate:"required,max=8,alphanum"`
	Name      string `validate:"required,max=30"`
	Devices   Devices
}
