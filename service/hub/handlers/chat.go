package handlers

import (
	"PingHub/service/hub"
	"PingHub/tools/decode"
	"PingHub/tools/errs"
)

type ChatHandler struct{}

func NewChatHandler() hub.Handler   { return &ChatHandler{} }
func (h *ChatHandler) Type() string { return hub.TypeChat }

// Handle relays a chat event to every member of the room, sender included.
// A sender that is not a member of the named room gets exactly one error
// frame back and nothing is relayed.
func (h *ChatHandler) Handle(ctx *hub.Context, f *hub.Frame, c *hub.Client) error {
	p, err := decode.DecodeMap[hub.ChatPayload](f.Fields)
	if err != nil {
		return errs.WrapMsg(err, "chat payload")
	}
	if p.RoomID == "" || p.UserID == "" || p.Content == "" {
		return nil
	}

	rooms := ctx.S.Rooms()
	if !rooms.Member(c, p.RoomID) {
		c.Enqueue(hub.BuildError(errs.ErrNotInRoom.Msg))
		return nil
	}

	rooms.Broadcast(p.RoomID, hub.BuildChat(p.RoomID, p.UserID, p.Content), nil)
	return nil
}
