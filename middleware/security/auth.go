package security

import (
	"net/http"
	"strings"

	toolsec "PingHub/tools/security"

	"github.com/gin-gonic/gin"
)

// —— context key ——
// 后续 handler 统一用这个 key 读取已验证的 userId
const CtxUserKey = "authUserId"

type Options struct {
	Secret []byte
	// 读取哪个请求头；默认 Authorization: Bearer xxx
	HeaderToken string
}

func DefaultOptions(secret []byte) *Options {
	return &Options{
		Secret:      secret,
		HeaderToken: "Authorization",
	}
}

// Middleware rejects requests without a valid HMAC bearer token and stores
// the token subject in the gin context.
func Middleware(opts *Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := strings.TrimSpace(c.GetHeader(opts.HeaderToken))
		var token string
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			token = strings.TrimSpace(authz[len("bearer "):])
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := toolsec.Verify(toolsec.DefaultOptions(opts.Secret), token, "")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(CtxUserKey, claims.Subject())
		c.Next()
	}
}
