// Package handlers wires one handler per inbound frame type into the hub
// dispatcher.
package handlers

import (
	"PingHub/service/hub"
)

func RegisterAll(s *hub.Server) {
	d := s.Disp()
	d.Register(NewAuthHandler())
	d.Register(NewJoinHandler())
	d.Register(NewLeaveHandler())
	d.Register(NewChatHandler())
}
