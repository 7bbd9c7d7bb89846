// Package handlers implements the HTTP endpoints of the journaling API:
// thoughts and the shared feed, saves and reactions, mood check-ins,
// unsent messages, milestones, reports, and session management.
//
// Every endpoint answers in one of two shapes. Successes carry the
// resource view directly; failures carry the ErrorResponse envelope with
// a stable machine code, for example:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "thought not found"
//	}
//
// Clients branch on code, never on message text.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flyawayapp/go-journal-backend/internal/http/middleware"
)

// ErrorResponse is the failure envelope for every endpoint. RequestID is
// the correlation ID minted by the request-id middleware; users quote it
// when reporting problems, support greps for it in the logs.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Safe to surface in the apps
	Message string `json:"message" example:"thought not found"`
}

// fail aborts the request with an ErrorResponse. Server-side failures
// (5xx) also hit the request-scoped logger; client errors are routine
// and stay out of the error stream.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail exposes fail for the router's NoRoute and NoMethod fallbacks so
// even unmatched requests answer in the standard envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
