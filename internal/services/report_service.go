// Package services – ReportService
//
// Content reports flag community thoughts for moderation. Reports are
// write-only from the app's point of view; review happens out of band.
package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
)

// ReportService records moderation reports against community thoughts.
type ReportService struct {
	// DB is the database handle used for all report operations.
	DB *gorm.DB
}

// Submit files a report by userID against thoughtID. detail is optional
// free-text context; blank detail is stored as absent.
func (s *ReportService) Submit(ctx context.Context, userID, thoughtID, reportedUserID string, reason domain.ReportReason, detail *string) (*domain.ContentReport, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if thoughtID == "" {
		return nil, ErrThoughtNotFound
	}
	if !reason.Valid() {
		return nil, ErrInvalidReason
	}
	if detail != nil && strings.TrimSpace(*detail) == "" {
		detail = nil
	}
	return repo.CreateReport(ctx, s.DB, &domain.ContentReport{
		ReportedThoughtID: thoughtID,
		ReportedUserID:    reportedUserID,
		ReportingUserID:   userID,
		Reason:            reason,
		AdditionalContext: detail,
	})
}
