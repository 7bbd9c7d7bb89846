// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for Milestone.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
)

// CreateMilestone inserts a new milestone for userID.
func CreateMilestone(ctx context.Context, db *gorm.DB, userID, title string, eventDate time.Time) (*domain.Milestone, error) {
	m := &domain.Milestone{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		EventDate: eventDate,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListMilestones returns all milestones for userID, most recent event first.
func ListMilestones(ctx context.Context, db *gorm.DB, userID string) ([]domain.Milestone, error) {
	var out []domain.Milestone
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("event_date desc").
		Find(&out).Error
	return out, err
}

// GetMilestone fetches a milestone by id scoped to its owner. Returns
// ErrNotFound when missing or not owned by userID.
func GetMilestone(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Milestone, error) {
	var m domain.Milestone
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMilestone rewrites the editable fields (title, event date) of a
// milestone owned by userID. Returns ErrNotFound when no row matched.
func UpdateMilestone(ctx context.Context, db *gorm.DB, id, userID, title string, eventDate time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Milestone{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"title": title, "event_date": eventDate})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMilestone removes a milestone scoped to its owner.
func DeleteMilestone(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Milestone{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMilestonesByUser removes every milestone for userID (account teardown).
func DeleteMilestonesByUser(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Milestone{}).Error
}
