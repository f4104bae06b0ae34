package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Origin restricts which browser origins may open the WebSocket endpoint.
// An empty allow list disables the check (non-browser clients send no Origin
// header and always pass).
func Origin(allowed []string) gin.HandlerFunc {
	allowSet := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		allowSet[o] = struct{}{}
	}
	return func(c *gin.Context) {
		if len(allowSet) == 0 {
			c.Next()
			return
		}
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		if _, ok := allowSet[origin]; !ok {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
