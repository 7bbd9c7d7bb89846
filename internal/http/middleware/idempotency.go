package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client's dedup key for unsafe
// requests. The mobile apps retry writes aggressively on flaky
// connections, so a save or reaction can arrive twice with the same key
// and must only count once.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys stashed by IdempotencyValidator; read through the
// accessors below and by the rate limiter's bypass check.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// defaultKeyPattern is an RFC 7230-ish token with the separators UUID
// and ULID style keys use.
var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key for this request, if the
// client sent one. Handlers read it from here rather than the header so
// they only ever see keys that passed validation.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request repeats an already completed
// write. Handlers serve the stored outcome instead of running the
// operation again.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions tunes header validation. MaxLen defaults to 200; a
// nil Pattern falls back to defaultKeyPattern. TTL windows live in the
// lookup, not here.
type IdempotencyOptions struct {
	MaxLen  int
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a completed, still-replayable result
// exists for (userID, scopeID, key) at the given time. Lookup errors
// must not block the request; callers treat them as a miss.
type IdempotencyLookup func(ctx context.Context, userID, scopeID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates Idempotency-Key when present, stashes
// it for handlers, and consults lookup for a prior completion. On a hit
// it flags the request as a replay and as rate-limit exempt; replays
// already paid their tokens the first time around.
//
// Requests without the header pass through untouched. A malformed key is
// a 400; the middleware never serves a cached payload itself.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			// Write routes nest under /thoughts/:id and friends, so the
			// path param scopes the key to its target resource.
			scopeID := c.Param("id")
			if exists, _ := lookup(c.Request.Context(), userIDFromCtx(c), scopeID, key, time.Now().UTC()); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// userIDFromCtx mirrors the handler-side identity resolution: session
// user when the auth middleware set one, "demo-user" otherwise so local
// development works without tokens.
func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "demo-user"
}
