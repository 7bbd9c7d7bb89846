// Package services – MoodService
//
// This file implements the MoodService, which gates the daily mood check-in.
// "Today" is evaluated in the user's local calendar day, so the day window is
// computed in a configurable location and the membership test runs on the
// client side against a small bounded fetch of recent entries.
package services

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
)

// todayFetchLimit bounds the recent-entry fetch backing the today lookup.
// One check-in per day means ten rows cover well over a week of history.
const todayFetchLimit = 10

// MoodService implements the daily mood check-in and its history.
type MoodService struct {
	// DB is the database handle used for all mood operations.
	DB *gorm.DB
	// Loc is the calendar location for "today". Defaults to time.Local.
	Loc *time.Location
}

func (s *MoodService) location() *time.Location {
	if s.Loc != nil {
		return s.Loc
	}
	return time.Local
}

// Save records a mood check-in for userID. mood must be on the 1..5 scale;
// a blank note is stored as absent.
func (s *MoodService) Save(ctx context.Context, userID string, mood int, note *string) (*domain.MoodEntry, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if mood < 1 || mood > 5 {
		return nil, ErrInvalidMood
	}
	if note != nil && *note == "" {
		note = nil
	}
	return repo.CreateMoodEntry(ctx, s.DB, userID, mood, note)
}

// Today returns the user's latest check-in from the current local calendar
// day, or nil when none exists. Submitting again on the same day is allowed;
// the newest entry simply wins.
func (s *MoodService) Today(ctx context.Context, userID string) (*domain.MoodEntry, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	entries, err := repo.ListMoodEntries(ctx, s.DB, userID, todayFetchLimit)
	if err != nil {
		return nil, err
	}

	loc := s.location()
	now := time.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	var latest *domain.MoodEntry
	for i := range entries {
		e := entries[i]
		local := e.CreatedAt.In(loc)
		if local.Before(start) || !local.Before(end) {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = &entries[i]
		}
	}
	return latest, nil
}

// History returns the user's check-ins over the last `days` days in ascending
// chronological order, ready for charting. days <= 0 returns all history.
func (s *MoodService) History(ctx context.Context, userID string, days int) ([]domain.MoodEntry, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	entries, err := repo.ListMoodEntries(ctx, s.DB, userID, 0)
	if err != nil {
		return nil, err
	}

	if days > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -days)
		filtered := entries[:0]
		for _, e := range entries {
			if !e.CreatedAt.Before(cutoff) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
