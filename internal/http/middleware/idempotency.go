package middleware

// Idempotency-Key support for the two message-creating POST routes. A replay
// is answered here; handlers record fresh results with GetIdempotencyKey and
// IdempotencyScope.

import (
	"context"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header that carries the client's key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set to "true" on responses served from a
// stored result.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"

	defaultIdemKeyMaxLen = 200
)

var defaultIdemKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stashed by
// IdempotencyValidator. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request was answered from a stored result.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyScope is the scope half of the idempotency tuple: the request
// path, so the same key on /new/chat/2 and /new/message/5 never collide.
func IdempotencyScope(c *gin.Context) string {
	return c.Request.URL.Path
}

// IdempotencyOptions configures header validation.
type IdempotencyOptions struct {
	MaxLen  int            // <= 0 means 200
	Pattern *regexp.Regexp // nil means letters, digits and ._~-:
}

// IdempotencyLookup returns the stored response body for (userID, scope,
// key) when one is still valid. An error never blocks the request; it is
// logged and the handler runs normally.
type IdempotencyLookup func(ctx context.Context, userID uint, scope, key string) (body any, found bool, err error)

// IdempotencyValidator must run after RequireToken. Without the header it
// does nothing. A malformed key is a 400 bad_idempotency_key. A key that
// lookup knows is answered 200 with the stored body and
// Idempotency-Replayed: true, and the handler is skipped.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen, pat := opts.MaxLen, opts.Pattern
	if maxLen <= 0 {
		maxLen = defaultIdemKeyMaxLen
	}
	if pat == nil {
		pat = defaultIdemKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}
		c.Set(ctxKeyIdemKey, key)

		uid := userIDFromCtx(c)
		if lookup != nil && uid != 0 {
			body, found, err := lookup(c.Request.Context(), uid, IdempotencyScope(c), key)
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			}
			if found {
				c.Set(ctxKeyIdemReplay, true)
				c.Header(HeaderIdempotencyReplayed, "true")
				c.AbortWithStatusJSON(http.StatusOK, body)
				return
			}
		}

		c.Next()
	}
}

// userIDFromCtx returns the caller id set by RequireToken, or 0.
func userIDFromCtx(c *gin.Context) uint {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
