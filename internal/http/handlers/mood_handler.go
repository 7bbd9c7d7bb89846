// Mood check-in HTTP handlers.
//
// Routes:
//   - POST /mood          (check in)
//   - GET  /mood/today    (today's check-in, if any)
//   - GET  /mood/history  (ascending history for charting)
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/utils"
)

// MoodService defines mood check-in operations consumed by HTTP handlers.
type MoodService interface {
	// Save records a mood check-in (1..5) with an optional note.
	Save(ctx context.Context, userID string, mood int, note *string) (*domain.MoodEntry, error)
	// Today returns the latest check-in from the current local day, or nil.
	Today(ctx context.Context, userID string) (*domain.MoodEntry, error)
	// History returns check-ins over the last days, ascending.
	History(ctx context.Context, userID string, days int) ([]domain.MoodEntry, error)
}

// SaveMoodRequest is the JSON payload for a mood check-in.
type SaveMoodRequest struct {
	// Mood is the 1 (very low) to 5 (great) scale value.
	Mood int `json:"mood" binding:"required" example:"4"`
	// Note optionally annotates the check-in.
	Note *string `json:"note,omitempty" example:"slept well for once"`
}

// TodayMoodResponse wraps the optional entry so "no check-in yet" stays a 200.
type TodayMoodResponse struct {
	CheckedIn bool              `json:"checked_in"`
	Entry     *domain.MoodEntry `json:"entry,omitempty"`
}

// SaveMood godoc
// @ID          saveMood
// @Summary     Record a mood check-in
// @Description Records the current user's mood on a 1-5 scale with an optional note.
// @Tags        Mood
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.SaveMoodRequest  true  "Check-in payload"
//
// @Success     201  {object} domain.MoodEntry
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /mood [post]
func (h *Handlers) SaveMood(c *gin.Context) {
	var req SaveMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	entry, err := h.moodSvc.Save(c.Request.Context(), userID(c), req.Mood, req.Note)
	if err != nil {
		failFrom(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, entry)
}

// TodayMood godoc
// @ID          todayMood
// @Summary     Fetch today's mood check-in
// @Description Returns the latest check-in from the current local calendar day, if any.
// @Tags        Mood
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} handlers.TodayMoodResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /mood/today [get]
func (h *Handlers) TodayMood(c *gin.Context) {
	entry, err := h.moodSvc.Today(c.Request.Context(), userID(c))
	if err != nil {
		failFrom(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, TodayMoodResponse{CheckedIn: entry != nil, Entry: entry})
}

// MoodHistory godoc
// @ID          moodHistory
// @Summary     List mood history
// @Description Returns check-ins over the last days (default 30) in ascending order for charting.
// @Tags        Mood
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       days       query   int     false "Window in days"          default(30)
//
// @Success     200  {array}  domain.MoodEntry
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /mood/history [get]
func (h *Handlers) MoodHistory(c *gin.Context) {
	days := utils.AtoiDefault(c.Query("days"), 30)
	entries, err := h.moodSvc.History(c.Request.Context(), userID(c), days)
	if err != nil {
		failFrom(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, entries)
}
