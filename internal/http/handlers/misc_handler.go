// Report, mindfulness, session, and account HTTP handlers.
//
// Routes:
//   - POST   /reports        (flag a community thought)
//   - GET    /mindfulness    (static exercise catalog)
//   - POST   /auth/session   (mint an anonymous session token)
//   - DELETE /account        (erase all user data)
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/http/middleware"
	"github.com/flyawayapp/go-journal-backend/internal/mindfulness"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
	"github.com/flyawayapp/go-journal-backend/internal/services"
)

// ReportService defines content moderation operations consumed by HTTP handlers.
type ReportService interface {
	// Submit files a report against a community thought.
	Submit(ctx context.Context, userID, thoughtID, reportedUserID string, reason domain.ReportReason, detail *string) (*domain.ContentReport, error)
}

// AccountService defines account teardown consumed by HTTP handlers.
type AccountService interface {
	// DeleteUserData removes every row owned by userID.
	DeleteUserData(ctx context.Context, userID string) error
}

// SessionService mints anonymous session tokens.
type SessionService interface {
	// NewSession creates a fresh anonymous identity and its token.
	NewSession(displayName string) (userID, token string, expiresAt time.Time, err error)
}

// SubmitReportRequest is the JSON payload for reporting a thought.
type SubmitReportRequest struct {
	// ThoughtID identifies the reported community thought.
	ThoughtID string `json:"thought_id" binding:"required" format:"uuid"`
	// ReportedUserID is the author of the reported thought.
	ReportedUserID string `json:"reported_user_id"`
	// Reason is one of the fixed report reasons.
	Reason string `json:"reason" binding:"required" example:"Harassment or bullying"`
	// AdditionalContext optionally explains the report.
	AdditionalContext *string `json:"additional_context,omitempty"`
}

// NewSessionRequest is the JSON payload for creating a session.
type NewSessionRequest struct {
	// DisplayName optionally names the new user; blank stays anonymous.
	DisplayName string `json:"display_name" example:"River"`
}

// NewSessionResponse carries the minted identity and its token.
type NewSessionResponse struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SubmitReport godoc
// @ID          submitReport
// @Summary     Report a community thought
// @Description Files a moderation report against a public thought. Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Reports
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.SubmitReportRequest  true  "Report payload"
//
// @Success     201  {object} domain.ContentReport
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /reports [post]
func (h *Handlers) SubmitReport(c *gin.Context) {
	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	uid := userID(c)

	idemKey, _ := middleware.GetIdempotencyKey(c)
	var db *gorm.DB
	if svc, okSvc := h.reportSvc.(*services.ReportService); okSvc {
		db = svc.DB
	}
	if idemKey != "" && db != nil {
		if rec, err := repo.GetIdempotency(ctx, db, uid, "", idemKey, time.Now().UTC()); err == nil && rec != nil {
			if prev, err2 := repo.GetUserReport(ctx, db, rec.ResourceID, uid); err2 == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusCreated, prev)
				return
			}
		}
	}

	rep, err := h.reportSvc.Submit(ctx, uid, req.ThoughtID,
		req.ReportedUserID, domain.ReportReason(req.Reason), req.AdditionalContext)
	if err != nil {
		failFrom(c, err, ErrCodeCreateFailed)
		return
	}
	if idemKey != "" && db != nil {
		_, _ = repo.CreateIdempotency(ctx, db, uid, "", idemKey, rep.ID, http.StatusCreated, 24*time.Hour)
	}
	ok(c, http.StatusCreated, rep)
}

// ListMindfulness godoc
// @ID          listMindfulness
// @Summary     List mindfulness exercises
// @Description Returns the static catalog of guided exercises.
// @Tags        Mindfulness
// @Produce     json
//
// @Success     200  {array} mindfulness.Exercise
// @Router      /mindfulness [get]
func (h *Handlers) ListMindfulness(c *gin.Context) {
	ok(c, http.StatusOK, mindfulness.Catalog())
}

// NewSession godoc
// @ID          newSession
// @Summary     Create an anonymous session
// @Description Mints a fresh anonymous user and a Bearer token for it.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.NewSessionRequest  false  "Session payload"
//
// @Success     201  {object} handlers.NewSessionResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/session [post]
func (h *Handlers) NewSession(c *gin.Context) {
	var req NewSessionRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	uid, token, exp, err := h.sessionSvc.NewSession(req.DisplayName)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, NewSessionResponse{UserID: uid, Token: token, ExpiresAt: exp})
}

// DeleteAccount godoc
// @ID          deleteAccount
// @Summary     Erase account data
// @Description Removes every row the current user owns, cancels pending reminders, and cleans up voice recordings.
// @Tags        Account
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     204  {string} string "No Content"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /account [delete]
func (h *Handlers) DeleteAccount(c *gin.Context) {
	if err := h.accountSvc.DeleteUserData(c.Request.Context(), userID(c)); err != nil {
		failFrom(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}
