// Save and reaction HTTP handlers.
//
// Routes:
//   - POST   /thoughts/{id}/save              (bookmark)
//   - DELETE /thoughts/{id}/save              (remove bookmark)
//   - GET    /saved                           (saved list)
//   - POST   /thoughts/{id}/reactions         (react)
//   - DELETE /thoughts/{id}/reactions/{kind}  (remove reaction)
//   - GET    /thoughts/{id}/reactions         (own reaction kinds)
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
)

// ReactionService defines save/reaction operations consumed by HTTP handlers.
type ReactionService interface {
	// Save bookmarks a thought; saving twice is a no-op.
	Save(ctx context.Context, userID, thoughtID string) error
	// Unsave removes a bookmark.
	Unsave(ctx context.Context, userID, thoughtID string) error
	// React records a reaction of the given kind; reacting twice is a no-op.
	React(ctx context.Context, userID, thoughtID string, kind domain.ReactionKind) error
	// Unreact removes a reaction of the given kind.
	Unreact(ctx context.Context, userID, thoughtID string, kind domain.ReactionKind) error
	// UserReactions returns the kinds the user has left on a thought.
	UserReactions(ctx context.Context, userID, thoughtID string) ([]domain.ReactionKind, error)
	// SavedThoughts returns the user's saved thoughts, newest save first.
	SavedThoughts(ctx context.Context, userID string) ([]domain.Thought, error)
}

// ReactRequest is the JSON payload for adding a reaction.
type ReactRequest struct {
	// Kind is one of heart, sparkle, peace, growth.
	Kind string `json:"kind" binding:"required" example:"heart"`
}

// thoughtParam validates the {id} path segment. Returns "" after writing the
// error response when invalid.
func thoughtParam(c *gin.Context) string {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "thought id must be a UUID")
		return ""
	}
	return id
}

// SaveThought godoc
// @ID          saveThought
// @Summary     Save a thought
// @Description Bookmarks a community thought for the current user. Idempotent.
// @Tags        Reactions
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Thought ID (UUID)"      format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /thoughts/{id}/save [post]
func (h *Handlers) SaveThought(c *gin.Context) {
	id := thoughtParam(c)
	if id == "" {
		return
	}
	if err := h.reactionSvc.Save(c.Request.Context(), userID(c), id); err != nil {
		failFrom(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// UnsaveThought godoc
// @ID          unsaveThought
// @Summary     Remove a saved thought
// @Description Removes the current user's bookmark on a thought.
// @Tags        Reactions
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Thought ID (UUID)"      format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /thoughts/{id}/save [delete]
func (h *Handlers) UnsaveThought(c *gin.Context) {
	id := thoughtParam(c)
	if id == "" {
		return
	}
	if err := h.reactionSvc.Unsave(c.Request.Context(), userID(c), id); err != nil {
		failFrom(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// ListSaved godoc
// @ID          listSaved
// @Summary     List saved thoughts
// @Description Returns the current user's saved thoughts, newest save first, expired thoughts excluded.
// @Tags        Reactions
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {array}  domain.Thought
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /saved [get]
func (h *Handlers) ListSaved(c *gin.Context) {
	items, err := h.reactionSvc.SavedThoughts(c.Request.Context(), userID(c))
	if err != nil {
		failFrom(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, items)
}

// React godoc
// @ID          react
// @Summary     React to a thought
// @Description Records an emotional reaction on a community thought. Idempotent per kind.
// @Tags        Reactions
// @Accept      json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Thought ID (UUID)"      format(uuid)
// @Param       body       body    handlers.ReactRequest  true  "Reaction payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /thoughts/{id}/reactions [post]
func (h *Handlers) React(c *gin.Context) {
	id := thoughtParam(c)
	if id == "" {
		return
	}
	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.reactionSvc.React(c.Request.Context(), userID(c), id, domain.ReactionKind(req.Kind)); err != nil {
		failFrom(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// Unreact godoc
// @ID          unreact
// @Summary     Remove a reaction
// @Description Removes the current user's reaction of the given kind from a thought.
// @Tags        Reactions
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Thought ID (UUID)"      format(uuid)
// @Param       kind       path    string  true  "Reaction kind"          example(heart)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /thoughts/{id}/reactions/{kind} [delete]
func (h *Handlers) Unreact(c *gin.Context) {
	id := thoughtParam(c)
	if id == "" {
		return
	}
	if err := h.reactionSvc.Unreact(c.Request.Context(), userID(c), id, domain.ReactionKind(c.Param("kind"))); err != nil {
		failFrom(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// ListReactions godoc
// @ID          listReactions
// @Summary     List own reactions on a thought
// @Description Returns the reaction kinds the current user has left on a thought.
// @Tags        Reactions
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Thought ID (UUID)"      format(uuid)
//
// @Success     200  {array}  string
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /thoughts/{id}/reactions [get]
func (h *Handlers) ListReactions(c *gin.Context) {
	id := thoughtParam(c)
	if id == "" {
		return
	}
	kinds, err := h.reactionSvc.UserReactions(c.Request.Context(), userID(c), id)
	if err != nil {
		failFrom(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, kinds)
}
