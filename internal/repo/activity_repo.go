// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// append-only ThoughtActivity audit table.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
)

// CreateActivity appends an audit row. Callers treat failures as
// best-effort: the primary operation never depends on this insert.
func CreateActivity(ctx context.Context, db *gorm.DB, a *domain.ThoughtActivity) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(a).Error
}

// ListActivities returns all audit rows for userID, unordered. The journey
// summary aggregates client-side after the fetch.
func ListActivities(ctx context.Context, db *gorm.DB, userID string) ([]domain.ThoughtActivity, error) {
	var out []domain.ThoughtActivity
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&out).Error
	return out, err
}

// DeleteActivitiesByUser removes every audit row for userID (account teardown).
func DeleteActivitiesByUser(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.ThoughtActivity{}).Error
}
