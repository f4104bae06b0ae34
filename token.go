package main

import (
	"net/http"

	"PingHub/global"
	"PingHub/tools/security"

	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// issueToken signs a short-lived HMAC token for a user id, standing in for
// the external identity provider during development.
func issueToken(cfg *global.AppConfig) gin.HandlerFunc {
	opts := security.DefaultOptions([]byte(cfg.JWTSecret))
	return func(c *gin.Context) {
		var req tokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		token, hash, expireAt, err := security.Generate(opts, req.UserID, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":     token,
			"tokenHash": hash,
			"expireAt":  expireAt.UnixMilli(),
		})
	}
}
