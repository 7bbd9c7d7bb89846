// Thought HTTP handlers.
//
// This file exposes REST endpoints for thought resources:
//   - POST   /thoughts        (create)
//   - GET    /thoughts        (own thoughts, ETag support)
//   - GET    /thoughts/{id}   (fetch one)
//   - DELETE /thoughts/{id}   (delete)
//   - GET    /feed            (public feed)
//   - GET    /journey         (activity summary)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/http/middleware"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
	"github.com/flyawayapp/go-journal-backend/internal/services"
	"github.com/flyawayapp/go-journal-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ThoughtService defines thought lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ThoughtService interface {
	// Create persists a new thought for userID.
	Create(ctx context.Context, userID, displayName string, in services.CreateThoughtInput) (*domain.Thought, error)
	// PublicFeed returns live public thoughts, newest first.
	PublicFeed(ctx context.Context) ([]domain.Thought, error)
	// OwnThoughts returns the user's live thoughts, newest first.
	OwnThoughts(ctx context.Context, userID string) ([]domain.Thought, error)
	// Get fetches a single thought owned by userID.
	Get(ctx context.Context, userID, id string) (*domain.Thought, error)
	// Delete removes a thought owned by userID.
	Delete(ctx context.Context, userID, id string) error
	// Journey summarizes the user's activity over the last days.
	Journey(ctx context.Context, userID string, days int) (*services.JourneySummary, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the API. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	thoughtSvc   ThoughtService
	reactionSvc  ReactionService
	moodSvc      MoodService
	msgSvc       MessageService
	milestoneSvc MilestoneService
	reportSvc    ReportService
	accountSvc   AccountService
	sessionSvc   SessionService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(
	thoughtSvc ThoughtService,
	reactionSvc ReactionService,
	moodSvc MoodService,
	msgSvc MessageService,
	milestoneSvc MilestoneService,
	reportSvc ReportService,
	accountSvc AccountService,
	sessionSvc SessionService,
) *Handlers {
	return &Handlers{
		thoughtSvc:   thoughtSvc,
		reactionSvc:  reactionSvc,
		moodSvc:      moodSvc,
		msgSvc:       msgSvc,
		milestoneSvc: milestoneSvc,
		reportSvc:    reportSvc,
		accountSvc:   accountSvc,
		sessionSvc:   sessionSvc,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// userName extracts the caller's display name from Gin context, falling back
// to the "X-User-Name" header. An empty result means anonymous.
func userName(c *gin.Context) string {
	if v, ok := c.Get("userName"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		return strings.TrimSpace(c.GetHeader("X-User-Name"))
	}
	return ""
}

// failFrom maps well-known service errors to HTTP responses and everything
// else to a 500 with the given fallback code.
func failFrom(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, services.ErrThoughtNotFound),
		errors.Is(err, services.ErrMessageNotFound),
		errors.Is(err, services.ErrMilestoneNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrInvalidReaction),
		errors.Is(err, services.ErrInvalidMood),
		errors.Is(err, services.ErrEmptyRecipient),
		errors.Is(err, services.ErrEmptyAudio),
		errors.Is(err, services.ErrEmptyTitle),
		errors.Is(err, services.ErrInvalidReason):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}

//
// DTOs
//

// CreateThoughtRequest is the JSON payload for creating a thought.
type CreateThoughtRequest struct {
	// Content is the thought text (trimmed, clipped to 2000 runes).
	Content string `json:"content" binding:"required" example:"I still miss the person I was before"`
	// Category labels the thought; defaults to Reflection.
	Category string `json:"category" example:"Healing"`
	// IsPublic shares the thought on the community feed.
	IsPublic bool `json:"is_public"`
	// Anonymous hides the author's display name.
	Anonymous bool `json:"anonymous"`
	// SendToEther releases the thought for sixty seconds, overriding keep_for_days.
	SendToEther bool `json:"send_to_ether"`
	// KeepForDays optionally retains the thought for this many days.
	KeepForDays *int `json:"keep_for_days,omitempty" example:"7"`
}

//
// Handlers
//

// CreateThought godoc
// @ID          createThought
// @Summary     Create a new thought
// @Description Creates a thought for the current user and returns the thought resource. Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Thoughts
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateThoughtRequest  true  "Create thought payload"
//
// @Success     201  {object}  domain.Thought
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /thoughts [post]
func (h *Handlers) CreateThought(c *gin.Context) {
	var req CreateThoughtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	uid := userID(c)

	// Replay: a retry carrying a key we already honored returns the
	// original thought instead of minting a second one.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	var db *gorm.DB
	if svc, okSvc := h.thoughtSvc.(*services.ThoughtService); okSvc {
		db = svc.DB
	}
	if idemKey != "" && db != nil {
		if rec, err := repo.GetIdempotency(ctx, db, uid, "", idemKey, time.Now().UTC()); err == nil && rec != nil {
			if prev, err2 := repo.GetUserThought(ctx, db, rec.ResourceID, uid); err2 == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusCreated, prev)
				return
			}
		}
	}

	t, err := h.thoughtSvc.Create(ctx, uid, userName(c), services.CreateThoughtInput{
		Content:     req.Content,
		Category:    domain.Category(req.Category),
		IsPublic:    req.IsPublic,
		Anonymous:   req.Anonymous,
		SendToEther: req.SendToEther,
		KeepForDays: req.KeepForDays,
	})
	if err != nil {
		failFrom(c, err, ErrCodeCreateFailed)
		return
	}
	if idemKey != "" && db != nil {
		// Best effort: a failed insert only means the retry creates anew.
		_, _ = repo.CreateIdempotency(ctx, db, uid, "", idemKey, t.ID, http.StatusCreated, 24*time.Hour)
	}
	ok(c, http.StatusCreated, t)
}

// PublicFeed godoc
// @ID          publicFeed
// @Summary     List the community feed
// @Description Returns up to 50 live public thoughts, newest first.
// @Tags        Thoughts
// @Produce     json
//
// @Success     200  {array}   domain.Thought
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /feed [get]
func (h *Handlers) PublicFeed(c *gin.Context) {
	items, err := h.thoughtSvc.PublicFeed(c.Request.Context())
	if err != nil {
		failFrom(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, items)
}

// ListThoughts godoc
// @ID          listThoughts
// @Summary     List own thoughts
// @Description Returns the current user's live thoughts, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Thoughts
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {array}  domain.Thought
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /thoughts [get]
func (h *Handlers) ListThoughts(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.thoughtSvc.(*services.ThoughtService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.ThoughtsStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"thoughts:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.thoughtSvc.OwnThoughts(ctx, uid)
	if err != nil {
		failFrom(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, items)
}

// GetThought godoc
// @ID          getThought
// @Summary     Fetch one thought
// @Description Returns a single thought owned by the current user.
// @Tags        Thoughts
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Thought ID (UUID)"      format(uuid)
//
// @Success     200  {object} domain.Thought
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Thought not found"
// @Router      /thoughts/{id} [get]
func (h *Handlers) GetThought(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "thought id must be a UUID")
		return
	}
	t, err := h.thoughtSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		failFrom(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, t)
}

// DeleteThought godoc
// @ID          deleteThought
// @Summary     Delete a thought
// @Description Deletes a thought owned by the current user and cancels its expiry reminder.
// @Tags        Thoughts
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Thought ID (UUID)"      format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Thought not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /thoughts/{id} [delete]
func (h *Handlers) DeleteThought(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "thought id must be a UUID")
		return
	}
	if err := h.thoughtSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		failFrom(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}

// Journey godoc
// @ID          journeySummary
// @Summary     Summarize recent activity
// @Description Aggregates the user's thought activity over the last days (default 30).
// @Tags        Journey
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       days       query   int     false "Window in days"          default(30)
//
// @Success     200  {object} services.JourneySummary
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /journey [get]
func (h *Handlers) Journey(c *gin.Context) {
	days := utils.AtoiDefault(c.Query("days"), 30)
	sum, err := h.thoughtSvc.Journey(c.Request.Context(), userID(c), days)
	if err != nil {
		failFrom(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, sum)
}
