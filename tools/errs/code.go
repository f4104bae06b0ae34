package errs

const (
	ServerInternalError = 500

	// Protocol errors surfaced to the peer as a single error frame.
	FrameMalformedError = 10001
	FrameUnknownError   = 10002
	NotInRoomError      = 10003
)

var (
	ErrFrameMalformed = NewCodeError(FrameMalformedError, "Invalid message format")
	ErrFrameUnknown   = NewCodeError(FrameUnknownError, "Unknown message type")
	ErrNotInRoom      = NewCodeError(NotInRoomError, "Not in ping room")
)
