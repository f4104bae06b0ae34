package hub

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stats is the introspection snapshot served by the admin API.
type Stats struct {
	Connections int            `json:"connections"`
	ActiveUsers int            `json:"activeUsers"`
	Rooms       int            `json:"rooms"`
	RoomSizes   map[string]int `json:"roomSizes"`
}

func (s *Server) Stats() Stats {
	return Stats{
		Connections: s.reg.Len(),
		ActiveUsers: s.reg.CurrentCount(),
		Rooms:       s.rooms.Len(),
		RoomSizes:   s.rooms.Sizes(),
	}
}

func (s *Server) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": s.reg.Len(),
		"activeUsers": s.reg.CurrentCount(),
	})
}

func (s *Server) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.Stats())
}

type pushRequest struct {
	UserID  string          `json:"userId" binding:"required"`
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// HandlePush delivers an arbitrary payload to every connection of one user.
func (s *Server) HandlePush(c *gin.Context) {
	var req pushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n := s.PushToUser(req.UserID, req.Payload)
	c.JSON(http.StatusOK, gin.H{"delivered": n})
}
