// Package services – MilestoneService
//
// Milestones mark dates the user is healing from or counting since. The
// service validates titles and maps repository sentinels to service errors;
// day arithmetic lives on the domain type.
package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
)

// MilestoneService implements the use-cases around recovery milestones.
type MilestoneService struct {
	// DB is the database handle used for all milestone operations.
	DB *gorm.DB
}

// Create inserts a milestone owned by userID.
func (s *MilestoneService) Create(ctx context.Context, userID, title string, eventDate time.Time) (*domain.Milestone, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	return repo.CreateMilestone(ctx, s.DB, userID, title, eventDate)
}

// List returns the user's milestones, most recent event first.
func (s *MilestoneService) List(ctx context.Context, userID string) ([]domain.Milestone, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return repo.ListMilestones(ctx, s.DB, userID)
}

// Update changes a milestone's title and event date, ensuring ownership.
func (s *MilestoneService) Update(ctx context.Context, userID, id, title string, eventDate time.Time) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if err := repo.UpdateMilestone(ctx, s.DB, id, userID, title, eventDate); err != nil {
		if isNotFound(err) {
			return ErrMilestoneNotFound
		}
		return err
	}
	return nil
}

// Delete removes a milestone owned by userID.
func (s *MilestoneService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if err := repo.DeleteMilestone(ctx, s.DB, id, userID); err != nil {
		if isNotFound(err) {
			return ErrMilestoneNotFound
		}
		return err
	}
	return nil
}
