package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by Middleware and read by the handlers.
const (
	CtxUserID   = "userID"
	CtxUserName = "userName"
)

// Middleware resolves the caller's identity from a Bearer session token and
// stores it on the Gin context. Requests without a valid token pass through
// unidentified; handlers decide whether identity is required. This keeps the
// demo header fallback in the handlers working without a token server.
func Middleware(m *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok && m != nil {
			if claims, err := m.VerifyToken(strings.TrimSpace(tok)); err == nil {
				c.Set(CtxUserID, claims.UserID)
				if claims.DisplayName != "" {
					c.Set(CtxUserName, claims.DisplayName)
				}
			}
		}
		c.Next()
	}
}
