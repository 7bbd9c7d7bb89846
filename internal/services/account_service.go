// Package services – AccountService
//
// Account teardown removes every row the user owns, cancels every pending
// expiry reminder, and cleans voice recordings out of blob storage. Rows go
// first; blob cleanup is best-effort and only logs, matching the message
// deletion flows.
package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/blob"
	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
)

// ReminderCanceller is the slice of the scheduler contract teardown needs.
type ReminderCanceller interface {
	CancelAll()
}

// AccountService implements whole-account data removal.
type AccountService struct {
	// DB is the database handle used for all teardown operations.
	DB *gorm.DB
	// Blobs holds voice recordings. Optional; nil skips blob cleanup.
	Blobs blob.Store
	// Scheduler manages local expiry reminders. Optional.
	Scheduler ReminderCanceller
}

// DeleteUserData removes every row owned by userID across all collections.
// The row deletes run in a single transaction; voice recordings are cleaned
// up afterwards best-effort, and pending reminders are cancelled wholesale.
func (s *AccountService) DeleteUserData(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	var voice []domain.Message
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msgs, err := repo.ListMessages(tx, userID)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			if m.IsVoice && m.AudioPath != nil {
				voice = append(voice, m)
			}
		}

		if err := repo.DeleteThoughtsByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := repo.DeleteSavesByUser(tx, userID); err != nil {
			return err
		}
		if err := repo.DeleteReactionsByUser(tx, userID); err != nil {
			return err
		}
		if err := repo.DeleteMoodEntriesByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := repo.DeleteMilestonesByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := repo.DeleteMessagesByUser(tx, userID); err != nil {
			return err
		}
		return repo.DeleteActivitiesByUser(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	if s.Scheduler != nil {
		s.Scheduler.CancelAll()
	}

	if s.Blobs != nil {
		for _, m := range voice {
			if err := s.Blobs.Delete(ctx, *m.AudioPath); err != nil {
				log.Ctx(ctx).Warn().Err(err).
					Str("key", *m.AudioPath).
					Msg("voice recording cleanup failed")
			}
		}
	}
	return nil
}
