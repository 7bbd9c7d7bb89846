// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for ContentReport.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
)

// CreateReport inserts a pending content report.
func CreateReport(ctx context.Context, db *gorm.DB, r *domain.ContentReport) (*domain.ContentReport, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = domain.ReportPending
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// GetUserReport fetches a single report by id scoped to its reporter.
// Returns ErrNotFound when the row is missing or filed by someone else.
func GetUserReport(ctx context.Context, db *gorm.DB, id, userID string) (*domain.ContentReport, error) {
	var r domain.ContentReport
	err := db.WithContext(ctx).
		Where("id = ? AND reporting_user_id = ?", id, userID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}
