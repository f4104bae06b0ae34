package handlers

import (
	"PingHub/service/hub"
	"PingHub/tools/decode"
	"PingHub/tools/errs"
)

type LeaveHandler struct{}

func NewLeaveHandler() hub.Handler   { return &LeaveHandler{} }
func (h *LeaveHandler) Type() string { return hub.TypeLeave }

// Handle removes the connection from the named room. No departure frame goes
// to the remaining members.
func (h *LeaveHandler) Handle(ctx *hub.Context, f *hub.Frame, c *hub.Client) error {
	p, err := decode.DecodeMap[hub.LeavePayload](f.Fields)
	if err != nil {
		return errs.WrapMsg(err, "leave payload")
	}
	if p.RoomID == "" {
		return nil
	}

	ctx.S.Rooms().Leave(c, p.RoomID)
	return nil
}
