// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RequireToken, the bearer-token guard in front of every
// protected route. Verification is pure computation: the request stops here
// with 401 before any store access when the token is missing, malformed,
// forged, expired or signed with an unexpected algorithm.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-direct-chat/internal/auth"
)

// Gin context keys set by RequireToken.
const (
	IdentityKey = "identity"
	UserIDKey   = "userID"
	UsernameKey = "username"
)

// TokenVerifier checks a bearer token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// RequireToken authenticates the request from "Authorization: Bearer <token>"
// and stores the identity in the Gin context. It also adds user_id to the
// request-scoped logger.
func RequireToken(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		id, err := v.Verify(token)
		if err != nil {
			LoggerFrom(c).Debug().Err(err).Msg("token rejected")
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(IdentityKey, id)
		c.Set(UserIDKey, id.UserID)
		c.Set(UsernameKey, id.Username)

		l := LoggerFrom(c).With().Uint("user_id", id.UserID).Logger()
		c.Set(loggerKey, &l)

		c.Next()
	}
}

// IdentityFrom returns the identity stored by RequireToken.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok && id.UserID != 0
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
