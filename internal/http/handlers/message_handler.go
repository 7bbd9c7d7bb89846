// Unsent message HTTP handlers.
//
// Routes:
//   - POST   /messages                     (send text)
//   - POST   /messages/voice               (send voice, multipart)
//   - GET    /messages/threads             (derived threads)
//   - GET    /messages/threads/{name}      (one thread, optionally grouped by day)
//   - DELETE /messages/threads/{name}      (delete a whole thread)
//   - DELETE /messages/{id}                (delete one message)
//
// Thread names are exact labels: the path segment is matched verbatim against
// stored recipient names.
package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/http/middleware"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
	"github.com/flyawayapp/go-journal-backend/internal/services"
	"github.com/flyawayapp/go-journal-backend/internal/sysutil"
)

// maxVoiceUploadBytes caps multipart voice uploads.
const maxVoiceUploadBytes = 25 << 20 // 25 MiB

// MessageService defines unsent-message operations consumed by HTTP handlers.
type MessageService interface {
	// Send persists a text message to the named recipient.
	Send(ctx context.Context, userID, recipientName, content string) (*domain.Message, error)
	// SendVoice uploads the recording at audioFile and persists a voice message.
	SendVoice(ctx context.Context, userID, recipientName, audioFile string) (*domain.Message, error)
	// Threads derives the user's threads, newest thread first.
	Threads(ctx context.Context, userID string) ([]domain.MessageThread, error)
	// Thread returns one thread's messages, oldest first.
	Thread(ctx context.Context, userID, recipientName string) ([]domain.Message, error)
	// DeleteThread removes every message addressed to the recipient.
	DeleteThread(ctx context.Context, userID, recipientName string) error
	// DeleteMessage removes a single message.
	DeleteMessage(ctx context.Context, userID, id string) error
}

// SendMessageRequest is the JSON payload for sending a text message.
type SendMessageRequest struct {
	// RecipientName is the free-text label the message is addressed to.
	RecipientName string `json:"recipient_name" binding:"required" example:"Mom"`
	// Content is the message body.
	Content string `json:"content" binding:"required" example:"I never got to say this in person"`
}

// ThreadResponse is one thread with optional per-day grouping.
type ThreadResponse struct {
	RecipientName string                   `json:"recipient_name"`
	Messages      []domain.Message         `json:"messages"`
	Days          []domain.MessageDayGroup `json:"days,omitempty"`
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a text message
// @Description Persists an unsent message from the current user to a named recipient. Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.SendMessageRequest  true  "Message payload"
//
// @Success     201  {object} domain.Message
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	ctx := c.Request.Context()
	uid := userID(c)

	idemKey, _ := middleware.GetIdempotencyKey(c)
	var db *gorm.DB
	if svc, okSvc := h.msgSvc.(*services.MessageService); okSvc {
		db = svc.DB
	}
	if idemKey != "" && db != nil {
		if rec, err := repo.GetIdempotency(ctx, db, uid, "", idemKey, time.Now().UTC()); err == nil && rec != nil {
			if prev, err2 := repo.GetUserMessage(db, rec.ResourceID, uid); err2 == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusCreated, prev)
				return
			}
		}
	}

	msg, err := h.msgSvc.Send(ctx, uid, req.RecipientName, req.Content)
	if err != nil {
		failFrom(c, err, ErrCodeCreateFailed)
		return
	}
	if idemKey != "" && db != nil {
		_, _ = repo.CreateIdempotency(ctx, db, uid, "", idemKey, msg.ID, http.StatusCreated, 24*time.Hour)
	}
	ok(c, http.StatusCreated, msg)
}

// SendVoiceMessage godoc
// @ID          sendVoiceMessage
// @Summary     Send a voice message
// @Description Uploads a voice recording (multipart field "audio") addressed to the recipient in the "recipient_name" form field.
// @Tags        Messages
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       X-User-ID       header    string  false "User ID (demo header)"  example(user123)
// @Param       recipient_name  formData  string  true  "Recipient label"
// @Param       audio           formData  file    true  "Voice recording (m4a)"
//
// @Success     201  {object} domain.Message
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/voice [post]
func (h *Handlers) SendVoiceMessage(c *gin.Context) {
	recipient := strings.TrimSpace(c.PostForm("recipient_name"))
	if recipient == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recipient_name is required")
		return
	}
	fh, err := c.FormFile("audio")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "audio file is required")
		return
	}
	if fh.Size > maxVoiceUploadBytes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "audio file too large")
		return
	}

	// Spool the upload to a temp file; the service removes it after upload.
	tmp := filepath.Join(os.TempDir(), "voice-"+uuid.NewString()+".m4a")
	if err := c.SaveUploadedFile(fh, tmp); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, err.Error())
		return
	}
	msg, err := h.msgSvc.SendVoice(c.Request.Context(), userID(c), recipient, tmp)
	if err != nil {
		_ = os.Remove(tmp)
		failFrom(c, err, ErrCodeUploadFailed)
		return
	}
	ok(c, http.StatusCreated, msg)
}

// ListThreads godoc
// @ID          listThreads
// @Summary     List message threads
// @Description Derives the current user's threads grouped by recipient label, newest thread first.
// @Tags        Messages
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {array}  domain.MessageThread
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/threads [get]
func (h *Handlers) ListThreads(c *gin.Context) {
	threads, err := h.msgSvc.Threads(c.Request.Context(), userID(c))
	if err != nil {
		failFrom(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, threads)
}

// GetThread godoc
// @ID          getThread
// @Summary     Fetch one thread
// @Description Returns a thread's messages oldest first; group_by_day=true adds calendar-day buckets.
// @Tags        Messages
// @Produce     json
//
// @Param       X-User-ID     header  string  false "User ID (demo header)"  example(user123)
// @Param       name          path    string  true  "Recipient label (exact match)"
// @Param       group_by_day  query   bool    false "Include per-day grouping"
//
// @Success     200  {object} handlers.ThreadResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/threads/{name} [get]
func (h *Handlers) GetThread(c *gin.Context) {
	name := c.Param("name")
	msgs, err := h.msgSvc.Thread(c.Request.Context(), userID(c), name)
	if err != nil {
		failFrom(c, err, ErrCodeListFailed)
		return
	}
	resp := ThreadResponse{RecipientName: name, Messages: msgs}
	if sysutil.IsTruthy(c.Query("group_by_day")) {
		resp.Days = services.GroupByDay(msgs, time.Local)
	}
	ok(c, http.StatusOK, resp)
}

// DeleteThread godoc
// @ID          deleteThread
// @Summary     Delete a thread
// @Description Deletes every message addressed to the recipient; voice recordings are cleaned up best-effort.
// @Tags        Messages
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       name       path    string  true  "Recipient label (exact match)"
//
// @Success     204  {string} string "No Content"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/threads/{name} [delete]
func (h *Handlers) DeleteThread(c *gin.Context) {
	if err := h.msgSvc.DeleteThread(c.Request.Context(), userID(c), c.Param("name")); err != nil {
		failFrom(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}

// DeleteMessage godoc
// @ID          deleteMessage
// @Summary     Delete a message
// @Description Deletes a single message owned by the current user.
// @Tags        Messages
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Message ID (UUID)"      format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Message not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/{id} [delete]
func (h *Handlers) DeleteMessage(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message id must be a UUID")
		return
	}
	if err := h.msgSvc.DeleteMessage(c.Request.Context(), userID(c), id); err != nil {
		failFrom(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}
