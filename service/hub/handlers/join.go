package handlers

import (
	"PingHub/service/hub"
	"PingHub/tools/decode"
	"PingHub/tools/errs"
)

type JoinHandler struct{}

func NewJoinHandler() hub.Handler   { return &JoinHandler{} }
func (h *JoinHandler) Type() string { return hub.TypeJoin }

// Handle moves the connection into the named room, confirms to the joiner,
// then announces to the other members. Joining while in another room leaves
// that room first.
func (h *JoinHandler) Handle(ctx *hub.Context, f *hub.Frame, c *hub.Client) error {
	p, err := decode.DecodeMap[hub.JoinPayload](f.Fields)
	if err != nil {
		return errs.WrapMsg(err, "join payload")
	}
	if p.RoomID == "" || p.UserID == "" {
		return nil
	}

	rooms := ctx.S.Rooms()
	rooms.Join(c, p.RoomID)

	c.Enqueue(hub.BuildJoined(p.RoomID))
	rooms.Broadcast(p.RoomID, hub.BuildUserJoined(p.RoomID, p.UserID), c)
	return nil
}
