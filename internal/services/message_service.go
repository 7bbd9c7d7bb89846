// Package services – MessageService
//
// This file implements MessageService, which owns unsent messages: letters a
// user writes to a named person without ever sending them. Messages live in
// the database; voice recordings live in blob storage with only their key on
// the row. Threads are not stored anywhere: they are derived per read by
// grouping the user's messages on the exact recipient label.
//
// Deletion is two-phase: the rows (the source of truth) go first, and blob
// cleanup afterwards is best-effort. An orphaned recording is acceptable; a
// dangling row pointing at a deleted recording is not.
//
// Observability: the heavier methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/blob"
	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// voiceContentType is the MIME type stored with uploaded recordings.
const voiceContentType = "audio/mp4"

// MessageService coordinates message persistence, thread derivation, and
// voice recording storage.
type MessageService struct {
	DB    *gorm.DB
	Blobs blob.Store

	// NameLocale selects the casing rules for thread display names.
	NameLocale language.Tag
}

// Send persists a text message from userID to the named recipient.
func (s *MessageService) Send(ctx context.Context, userID, recipientName, content string) (*domain.Message, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	recipientName = strings.TrimSpace(recipientName)
	if recipientName == "" {
		return nil, ErrEmptyRecipient
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	return repo.CreateMessage(s.DB.WithContext(ctx), userID, recipientName, content, false, nil)
}

// SendVoice uploads the recording at audioFile and persists a voice message
// row referencing it. The row is written only after the upload succeeds, so a
// failed upload leaves no dangling reference. The temp file is removed
// best-effort afterwards.
func (s *MessageService) SendVoice(ctx context.Context, userID, recipientName, audioFile string) (*domain.Message, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "SendVoice")
	span.SetAttributes(attribute.String("user.id", userID))
	defer span.End()

	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	recipientName = strings.TrimSpace(recipientName)
	if recipientName == "" {
		return nil, ErrEmptyRecipient
	}

	data, err := os.ReadFile(audioFile)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	key := blob.VoiceKey(userID)
	if err := s.Blobs.Put(ctx, key, data, voiceContentType); err != nil {
		return nil, err
	}

	msg, err := repo.CreateMessage(s.DB.WithContext(ctx), userID, recipientName, "", true, &key)
	if err != nil {
		return nil, err
	}

	if err := os.Remove(audioFile); err != nil && !os.IsNotExist(err) {
		log.Ctx(ctx).Warn().Err(err).Str("path", audioFile).Msg("voice temp file cleanup failed")
	}
	return msg, nil
}

// Threads derives the user's message threads. Messages are sorted oldest
// first, grouped by exact recipient label, and the resulting threads are
// ordered by their latest message, newest thread first. Labels that differ
// only in case or spacing are distinct threads.
func (s *MessageService) Threads(ctx context.Context, userID string) ([]domain.MessageThread, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Threads")
	span.SetAttributes(attribute.String("user.id", userID))
	defer span.End()

	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	msgs, err := repo.ListMessages(s.DB.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})

	caser := cases.Title(s.nameLocaleOrDefault())
	byRecipient := make(map[string]int)
	threads := make([]domain.MessageThread, 0)
	for _, m := range msgs {
		idx, ok := byRecipient[m.RecipientName]
		if !ok {
			idx = len(threads)
			byRecipient[m.RecipientName] = idx
			threads = append(threads, domain.MessageThread{
				RecipientName: m.RecipientName,
				DisplayName:   caser.String(m.RecipientName),
			})
		}
		threads[idx].Messages = append(threads[idx].Messages, m)
	}

	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].LastMessageDate().After(threads[j].LastMessageDate())
	})
	return threads, nil
}

// Thread returns the messages of a single thread, oldest first.
func (s *MessageService) Thread(ctx context.Context, userID, recipientName string) ([]domain.Message, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	msgs, err := repo.ListMessagesByRecipient(s.DB.WithContext(ctx), userID, recipientName)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}

// GroupByDay partitions ascending messages into calendar-day buckets in the
// given location, preserving order.
func GroupByDay(msgs []domain.Message, loc *time.Location) []domain.MessageDayGroup {
	if loc == nil {
		loc = time.Local
	}
	groups := make([]domain.MessageDayGroup, 0)
	for _, m := range msgs {
		local := m.CreatedAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		if n := len(groups); n > 0 && groups[n-1].Day.Equal(day) {
			groups[n-1].Messages = append(groups[n-1].Messages, m)
			continue
		}
		groups = append(groups, domain.MessageDayGroup{Day: day, Messages: []domain.Message{m}})
	}
	return groups
}

// DeleteThread removes every message addressed to recipientName. Rows are
// deleted first; voice recordings are cleaned up afterwards and failures are
// only logged.
func (s *MessageService) DeleteThread(ctx context.Context, userID, recipientName string) error {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "DeleteThread")
	span.SetAttributes(attribute.String("user.id", userID))
	defer span.End()

	if userID == "" {
		return ErrNotAuthenticated
	}
	db := s.DB.WithContext(ctx)

	msgs, err := repo.ListMessagesByRecipient(db, userID, recipientName)
	if err != nil {
		return err
	}
	if _, err := repo.DeleteMessagesByRecipient(db, userID, recipientName); err != nil {
		return err
	}

	for _, m := range msgs {
		s.deleteRecording(ctx, &m)
	}
	return nil
}

// DeleteMessage removes a single message owned by userID, then cleans up its
// recording best-effort.
func (s *MessageService) DeleteMessage(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	db := s.DB.WithContext(ctx)

	msg, err := repo.GetUserMessage(db, id, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrMessageNotFound
		}
		return err
	}
	if err := repo.DeleteMessage(db, id, userID); err != nil {
		if isNotFound(err) {
			return ErrMessageNotFound
		}
		return err
	}
	s.deleteRecording(ctx, msg)
	return nil
}

// deleteRecording removes a voice blob if the message has one. Rows are
// already gone by the time this runs, so failures only log.
func (s *MessageService) deleteRecording(ctx context.Context, m *domain.Message) {
	if !m.IsVoice || m.AudioPath == nil || s.Blobs == nil {
		return
	}
	if err := s.Blobs.Delete(ctx, *m.AudioPath); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("message_id", m.ID).
			Str("key", *m.AudioPath).
			Msg("voice recording cleanup failed")
	}
}

// nameLocaleOrDefault returns the configured locale for casing or English if unset.
func (s *MessageService) nameLocaleOrDefault() language.Tag {
	if s.NameLocale == language.Und {
		return language.English
	}
	return s.NameLocale
}
