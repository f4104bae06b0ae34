package handlers

import (
	"PingHub/service/hub"
	"PingHub/tools/decode"
	"PingHub/tools/errs"
	"PingHub/tools/security"

	"go.uber.org/zap"
)

type AuthHandler struct{}

func NewAuthHandler() hub.Handler   { return &AuthHandler{} }
func (h *AuthHandler) Type() string { return hub.TypeAuth }

// Handle binds the connection to a user id and fans the new count out to
// every connection. The hub trusts the caller-supplied id; when a token is
// attached and a secret is configured, the token subject wins instead.
func (h *AuthHandler) Handle(ctx *hub.Context, f *hub.Frame, c *hub.Client) error {
	p, err := decode.DecodeMap[hub.AuthPayload](f.Fields)
	if err != nil {
		return errs.WrapMsg(err, "auth payload")
	}

	userID := p.UserID
	if secret := ctx.S.JWTSecret(); len(secret) > 0 && p.Token != "" {
		claims, verr := security.Verify(security.DefaultOptions(secret), p.Token, "")
		if verr != nil {
			ctx.S.Logger().Warn("auth token rejected",
				zap.String("connId", c.ConnID), zap.Error(verr))
			return nil
		}
		if sub := claims.Subject(); sub != "" {
			userID = sub
		}
	}
	if userID == "" {
		return nil
	}

	if ctx.S.Registry().Authenticate(c, userID) {
		ctx.S.BroadcastCount()
	}
	return nil
}
