// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for MoodEntry.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
)

// CreateMoodEntry inserts a new mood check-in. Entries are append-only.
func CreateMoodEntry(ctx context.Context, db *gorm.DB, userID string, mood int, note *string) (*domain.MoodEntry, error) {
	e := &domain.MoodEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Mood:      mood,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// ListMoodEntries returns mood entries for userID, newest first. A limit of
// 0 returns everything; the today-gate uses a small bound since at most one
// entry per day is expected.
func ListMoodEntries(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.MoodEntry, error) {
	var out []domain.MoodEntry
	q := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// DeleteMoodEntriesByUser removes every mood entry for userID (account teardown).
func DeleteMoodEntriesByUser(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.MoodEntry{}).Error
}
