package hub

import "PingHub/tools/errs"

func errsUnknown(frameType string) error {
	return errs.ErrFrameUnknown.WrapMsg("type=" + frameType)
}

// IsUnknownFrame reports whether err came from an unregistered frame type.
func IsUnknownFrame(err error) bool {
	return errs.ErrFrameUnknown.Is(err)
}
