// Milestone HTTP handlers.
//
// Routes:
//   - POST   /milestones       (create)
//   - GET    /milestones       (list)
//   - PUT    /milestones/{id}  (update)
//   - DELETE /milestones/{id}  (delete)
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
)

// MilestoneService defines milestone operations consumed by HTTP handlers.
type MilestoneService interface {
	// Create inserts a milestone owned by userID.
	Create(ctx context.Context, userID, title string, eventDate time.Time) (*domain.Milestone, error)
	// List returns the user's milestones, most recent event first.
	List(ctx context.Context, userID string) ([]domain.Milestone, error)
	// Update changes a milestone's title and event date.
	Update(ctx context.Context, userID, id, title string, eventDate time.Time) error
	// Delete removes a milestone owned by userID.
	Delete(ctx context.Context, userID, id string) error
}

// MilestoneRequest is the JSON payload for creating or updating a milestone.
type MilestoneRequest struct {
	// Title describes what the date marks.
	Title string `json:"title" binding:"required" example:"The day we said goodbye"`
	// EventDate is the date being counted from (RFC 3339).
	EventDate time.Time `json:"event_date" binding:"required" example:"2026-01-15T00:00:00Z"`
}

// MilestoneView is a milestone with its derived day counts.
type MilestoneView struct {
	domain.Milestone
	DaysSince     int    `json:"days_since"`
	TimeSinceText string `json:"time_since_text"`
}

func milestoneView(m domain.Milestone, now time.Time) MilestoneView {
	return MilestoneView{
		Milestone:     m,
		DaysSince:     m.DaysSince(now),
		TimeSinceText: m.TimeSinceText(now),
	}
}

// CreateMilestone godoc
// @ID          createMilestone
// @Summary     Create a milestone
// @Description Records a date the current user is counting from.
// @Tags        Milestones
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.MilestoneRequest  true  "Milestone payload"
//
// @Success     201  {object} handlers.MilestoneView
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /milestones [post]
func (h *Handlers) CreateMilestone(c *gin.Context) {
	var req MilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	m, err := h.milestoneSvc.Create(c.Request.Context(), userID(c), req.Title, req.EventDate)
	if err != nil {
		failFrom(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, milestoneView(*m, time.Now().UTC()))
}

// ListMilestones godoc
// @ID          listMilestones
// @Summary     List milestones
// @Description Returns the current user's milestones with day counts, most recent event first.
// @Tags        Milestones
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {array}  handlers.MilestoneView
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /milestones [get]
func (h *Handlers) ListMilestones(c *gin.Context) {
	items, err := h.milestoneSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		failFrom(c, err, ErrCodeListFailed)
		return
	}
	now := time.Now().UTC()
	views := make([]MilestoneView, 0, len(items))
	for _, m := range items {
		views = append(views, milestoneView(m, now))
	}
	ok(c, http.StatusOK, views)
}

// UpdateMilestone godoc
// @ID          updateMilestone
// @Summary     Update a milestone
// @Description Changes a milestone's title and event date.
// @Tags        Milestones
// @Accept      json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Milestone ID (UUID)"    format(uuid)
// @Param       body       body    handlers.MilestoneRequest  true  "Milestone payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Milestone not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /milestones/{id} [put]
func (h *Handlers) UpdateMilestone(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "milestone id must be a UUID")
		return
	}
	var req MilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.milestoneSvc.Update(c.Request.Context(), userID(c), id, req.Title, req.EventDate); err != nil {
		failFrom(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// DeleteMilestone godoc
// @ID          deleteMilestone
// @Summary     Delete a milestone
// @Description Removes a milestone owned by the current user.
// @Tags        Milestones
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Milestone ID (UUID)"    format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Milestone not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /milestones/{id} [delete]
func (h *Handlers) DeleteMilestone(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "milestone id must be a UUID")
		return
	}
	if err := h.milestoneSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		failFrom(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}
