// Package services – ReactionService
//
// This file implements the ReactionService, which governs saves and emotional
// reactions on community thoughts. Both follow the same shape: a best-effort
// existence check followed by a join-row insert and a blind counter bump on
// the thought. The check and the write are deliberately not atomic; the rare
// duplicate produced by a race is reconciled lazily the next time the user's
// saved list is assembled.
//
// Counters are denormalized and adjusted by exactly one per logical operation.
// Removals only decrement when a row actually went, so the counters never dip
// below zero. They are never recomputed from the join rows, so they may still
// drift upward under races; readers treat them as approximate.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
)

// ReactionService implements the use-cases around saves and reactions.
type ReactionService struct {
	// DB is the database handle used for all save/reaction operations.
	DB *gorm.DB
}

// Save bookmarks thoughtID for userID. Saving an already-saved thought is a
// no-op: the existing rows are kept and the counter is left alone.
func (s *ReactionService) Save(ctx context.Context, userID, thoughtID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	db := s.DB.WithContext(ctx)

	rows, err := repo.ListSaves(db, userID, thoughtID)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		log.Ctx(ctx).Debug().
			Str("thought_id", thoughtID).
			Msg("thought already saved, skipping")
		return nil
	}

	if _, err := repo.CreateSavedThought(db, userID, thoughtID); err != nil {
		return err
	}
	return repo.IncrSaveCount(ctx, s.DB, thoughtID, 1)
}

// Unsave removes every save row for (userID, thoughtID) and decrements the
// thought's save counter by exactly one when anything was removed. Unsaving
// a thought that was never saved leaves the counter alone.
func (s *ReactionService) Unsave(ctx context.Context, userID, thoughtID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	removed, err := repo.DeleteSaves(s.DB.WithContext(ctx), userID, thoughtID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return nil
	}
	return repo.IncrSaveCount(ctx, s.DB, thoughtID, -1)
}

// React records a reaction of the given kind on thoughtID. Reacting twice
// with the same kind is a no-op.
func (s *ReactionService) React(ctx context.Context, userID, thoughtID string, kind domain.ReactionKind) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if !kind.Valid() {
		return ErrInvalidReaction
	}
	db := s.DB.WithContext(ctx)

	n, err := repo.CountReactions(db, thoughtID, userID, kind)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Ctx(ctx).Debug().
			Str("thought_id", thoughtID).
			Str("kind", string(kind)).
			Msg("reaction already recorded, skipping")
		return nil
	}

	if _, err := repo.CreateReaction(db, thoughtID, userID, kind); err != nil {
		return err
	}
	return repo.IncrReactionCount(ctx, s.DB, thoughtID, kind, 1)
}

// Unreact removes the user's reaction of the given kind and decrements the
// per-kind counter by exactly one when a row was removed. Removing a
// reaction that was never recorded leaves the counter alone.
func (s *ReactionService) Unreact(ctx context.Context, userID, thoughtID string, kind domain.ReactionKind) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if !kind.Valid() {
		return ErrInvalidReaction
	}
	removed, err := repo.DeleteReactions(s.DB.WithContext(ctx), thoughtID, userID, kind)
	if err != nil {
		return err
	}
	if removed == 0 {
		return nil
	}
	return repo.IncrReactionCount(ctx, s.DB, thoughtID, kind, -1)
}

// UserReactions returns the distinct reaction kinds userID has left on
// thoughtID, for rendering toggle state.
func (s *ReactionService) UserReactions(ctx context.Context, userID, thoughtID string) ([]domain.ReactionKind, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return repo.ListUserReactionKinds(s.DB.WithContext(ctx), thoughtID, userID)
}

// SavedThoughts assembles the user's saved list, newest save first, with
// expired thoughts filtered out.
//
// Duplicate save rows for the same thought (left behind by the racy save
// path) are reconciled here: the newest row per thought is kept and the rest
// are deleted best-effort. Reconciliation failures only log; the list is
// still returned deduplicated.
func (s *ReactionService) SavedThoughts(ctx context.Context, userID string) ([]domain.Thought, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	db := s.DB.WithContext(ctx)

	rows, err := repo.ListSavesByUser(db, userID)
	if err != nil {
		return nil, err
	}

	// rows come back newest first, so the first row per thought wins.
	seen := make(map[string]bool, len(rows))
	keep := make([]domain.SavedThought, 0, len(rows))
	for _, r := range rows {
		if seen[r.ThoughtID] {
			if err := repo.DeleteSaveRow(db, r.ID); err != nil {
				log.Ctx(ctx).Warn().Err(err).
					Str("save_id", r.ID).
					Msg("duplicate save cleanup failed")
			}
			continue
		}
		seen[r.ThoughtID] = true
		keep = append(keep, r)
	}
	if len(keep) == 0 {
		return []domain.Thought{}, nil
	}

	ids := make([]string, 0, len(keep))
	for _, r := range keep {
		ids = append(ids, r.ThoughtID)
	}
	thoughts, err := repo.ListThoughtsByIDs(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	byID := make(map[string]domain.Thought, len(thoughts))
	for _, t := range thoughts {
		if t.Expired(now) {
			continue
		}
		byID[t.ID] = t
	}

	// Preserve save order; drop saves whose thought is gone or expired.
	out := make([]domain.Thought, 0, len(keep))
	for _, r := range keep {
		if t, ok := byID[r.ThoughtID]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}
