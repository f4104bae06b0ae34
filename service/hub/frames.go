package hub

import (
	"encoding/json"
	"time"

	"PingHub/tools/errs"
	"PingHub/tools/ids"
)

// Inbound frame types.
const (
	TypeAuth  = "auth"
	TypeJoin  = "join"
	TypeLeave = "leave"
	TypeChat  = "chat"
)

// Outbound frame types.
const (
	TypeCount      = "count"
	TypeJoined     = "joined"
	TypeUserJoined = "user_joined"
	TypeError      = "error"
)

// Frame is one decoded inbound message. Fields keeps the raw object so each
// handler can decode its own payload shape.
type Frame struct {
	Type   string
	Fields map[string]any
}

// ParseFrame decodes a raw frame. A missing or non-string type is left empty
// and surfaces later as an unknown type, matching how peers treat it.
func ParseFrame(raw []byte) (*Frame, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errs.ErrFrameMalformed.WrapMsg(err.Error())
	}
	t, _ := m["type"].(string)
	return &Frame{Type: t, Fields: m}, nil
}

// ---- 入站负载 ----

type AuthPayload struct {
	UserID string `json:"userId"`
	Token  string `json:"token,omitempty"`
}

type JoinPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type LeavePayload struct {
	RoomID string `json:"roomId"`
}

type ChatPayload struct {
	RoomID  string `json:"roomId"`
	UserID  string `json:"userId"`
	Content string `json:"content"`
}

// ---- 出站帧 ----

type CountFrame struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type JoinedFrame struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type UserJoinedFrame struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

type ChatFrame struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	UserID    string `json:"userId"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch ms, server-assigned
	MessageID string `json:"messageId"`
}

type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// ---- 构造若干服务端回执 ----

func BuildCount(count int) []byte {
	return mustJSON(CountFrame{Type: TypeCount, Count: count})
}

func BuildJoined(roomID string) []byte {
	return mustJSON(JoinedFrame{Type: TypeJoined, RoomID: roomID})
}

func BuildUserJoined(roomID, userID string) []byte {
	return mustJSON(UserJoinedFrame{Type: TypeUserJoined, RoomID: roomID, UserID: userID})
}

func BuildChat(roomID, userID, content string) []byte {
	return mustJSON(ChatFrame{
		Type:      TypeChat,
		RoomID:    roomID,
		UserID:    userID,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
		MessageID: ids.GenerateCompact(),
	})
}

func BuildError(msg string) []byte {
	return mustJSON(ErrorFrame{Type: TypeError, Error: msg})
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
