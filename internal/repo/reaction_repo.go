// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Reaction
// join table.
package repo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
)

// CreateReaction inserts a reaction join row.
func CreateReaction(db *gorm.DB, thoughtID, userID string, kind domain.ReactionKind) (*domain.Reaction, error) {
	r := &domain.Reaction{
		ID:        uuid.NewString(),
		ThoughtID: thoughtID,
		UserID:    userID,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	return r, db.Create(r).Error
}

// CountReactions returns how many rows match (thoughtID, userID, kind).
// Used as the existence pre-check before an insert.
func CountReactions(db *gorm.DB, thoughtID, userID string, kind domain.ReactionKind) (int64, error) {
	var n int64
	err := db.Model(&domain.Reaction{}).
		Where("thought_id = ? AND user_id = ? AND kind = ?", thoughtID, userID, kind).
		Count(&n).Error
	return n, err
}

// DeleteReactions removes all rows matching (thoughtID, userID, kind) and
// reports how many were deleted. Deleting by triple clears duplicates.
func DeleteReactions(db *gorm.DB, thoughtID, userID string, kind domain.ReactionKind) (int64, error) {
	res := db.
		Where("thought_id = ? AND user_id = ? AND kind = ?", thoughtID, userID, kind).
		Delete(&domain.Reaction{})
	return res.RowsAffected, res.Error
}

// ListUserReactionKinds returns the distinct kinds userID has applied to a
// thought, used to render toggle state.
func ListUserReactionKinds(db *gorm.DB, thoughtID, userID string) ([]domain.ReactionKind, error) {
	var rows []domain.Reaction
	err := db.
		Where("thought_id = ? AND user_id = ?", thoughtID, userID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[domain.ReactionKind]struct{}, len(rows))
	kinds := make([]domain.ReactionKind, 0, len(rows))
	for _, r := range rows {
		if _, dup := seen[r.Kind]; dup {
			continue
		}
		seen[r.Kind] = struct{}{}
		kinds = append(kinds, r.Kind)
	}
	return kinds, nil
}

// DeleteReactionsByUser removes every reaction row for userID (account teardown).
func DeleteReactionsByUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&domain.Reaction{}).Error
}
