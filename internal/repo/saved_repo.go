// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// SavedThought join table.
package repo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
)

// CreateSavedThought inserts a save join row for (userID, thoughtID).
func CreateSavedThought(db *gorm.DB, userID, thoughtID string) (*domain.SavedThought, error) {
	s := &domain.SavedThought{
		ID:        uuid.NewString(),
		ThoughtID: thoughtID,
		UserID:    userID,
		SavedAt:   time.Now().UTC(),
	}
	return s, db.Create(s).Error
}

// ListSaves returns the join rows matching (userID, thoughtID). More than
// one row means a duplicate slipped through the pre-insert check.
func ListSaves(db *gorm.DB, userID, thoughtID string) ([]domain.SavedThought, error) {
	var out []domain.SavedThought
	err := db.
		Where("user_id = ? AND thought_id = ?", userID, thoughtID).
		Find(&out).Error
	return out, err
}

// ListSavesByUser returns every save row for a user, ordered by saved_at
// descending so the most recent bookmark comes first.
func ListSavesByUser(db *gorm.DB, userID string) ([]domain.SavedThought, error) {
	var out []domain.SavedThought
	err := db.
		Where("user_id = ?", userID).
		Order("saved_at desc").
		Find(&out).Error
	return out, err
}

// DeleteSaves removes all join rows for (userID, thoughtID) and reports how
// many were deleted. Deleting defensively by pair (not by row id) clears any
// duplicates in one pass.
func DeleteSaves(db *gorm.DB, userID, thoughtID string) (int64, error) {
	res := db.
		Where("user_id = ? AND thought_id = ?", userID, thoughtID).
		Delete(&domain.SavedThought{})
	return res.RowsAffected, res.Error
}

// DeleteSaveRow removes a single join row by primary key. Used by duplicate
// reconciliation, which keeps one row per thought and drops the rest.
func DeleteSaveRow(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&domain.SavedThought{}).Error
}

// DeleteSavesByUser removes every save row for userID (account teardown).
func DeleteSavesByUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&domain.SavedThought{}).Error
}
