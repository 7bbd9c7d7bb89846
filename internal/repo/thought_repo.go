// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Thought
// model and its denormalized counters.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a thought is not found, functions return gorm.ErrRecordNotFound
//     (also exported in this package as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Counter semantics:
//   - IncrSaveCount and IncrReactionCount apply a blind delta of ±1. They
//     are deliberately NOT reconciled against join-row counts: a logical
//     save/unsave or react/unreact is always a net ±1 on the counter, no
//     matter how many duplicate rows the matching delete removed. The join
//     tables remain the source of truth for "did I already save/react".
//
// This repository is designed to be wrapped by higher-level services
// (services.ThoughtService, services.ReactionService) which enforce
// validation, expiry filtering, and audit/notification side effects.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
)

// CreateThought inserts a new Thought row. The ID is a randomly generated
// UUID and CreatedAt is set to UTC unless the caller already stamped it.
func CreateThought(ctx context.Context, db *gorm.DB, t *domain.Thought) (*domain.Thought, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.ReactionCounts == nil {
		t.ReactionCounts = map[string]int{}
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// ListPublicThoughts returns all thoughts flagged public. Expiry filtering,
// ordering, and the feed cap are applied by the caller.
func ListPublicThoughts(ctx context.Context, db *gorm.DB) ([]domain.Thought, error) {
	var out []domain.Thought
	err := db.WithContext(ctx).
		Where("is_public = ?", true).
		Find(&out).Error
	return out, err
}

// ListUserThoughts returns all thoughts owned by userID, unfiltered and
// unordered. The service applies the expiry predicate and sorts.
func ListUserThoughts(ctx context.Context, db *gorm.DB, userID string) ([]domain.Thought, error) {
	var out []domain.Thought
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&out).Error
	return out, err
}

// ListThoughtsByIDs returns the thoughts whose ids appear in ids. Missing
// ids are silently absent from the result.
func ListThoughtsByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Thought, error) {
	if len(ids) == 0 {
		return []domain.Thought{}, nil
	}
	var out []domain.Thought
	err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&out).Error
	return out, err
}

// GetThought fetches a single thought by id, owner not enforced. Returns
// ErrNotFound when missing.
func GetThought(ctx context.Context, db *gorm.DB, id string) (*domain.Thought, error) {
	var t domain.Thought
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetUserThought fetches a single thought by id and owner. Returns
// ErrNotFound when the row is missing or owned by someone else.
func GetUserThought(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Thought, error) {
	var t domain.Thought
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteThought hard-deletes a thought scoped to its owner. Returns
// ErrNotFound when no row matched, so callers can distinguish a stale id
// from a successful delete.
func DeleteThought(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Thought{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteThoughtsByUser removes every thought owned by userID (account teardown).
func DeleteThoughtsByUser(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.Thought{}).Error
}

// IncrSaveCount applies a blind delta to a thought's save counter.
func IncrSaveCount(ctx context.Context, db *gorm.DB, id string, delta int) error {
	return db.WithContext(ctx).
		Model(&domain.Thought{}).
		Where("id = ?", id).
		UpdateColumn("save_count", gorm.Expr("save_count + ?", delta)).Error
}

// IncrReactionCount applies a blind delta to the named per-kind reaction
// counter inside the serialized reaction_counts column. SQLite's json_set /
// json_extract operate directly on the stored JSON text.
func IncrReactionCount(ctx context.Context, db *gorm.DB, id string, kind domain.ReactionKind, delta int) error {
	path := "$." + string(kind)
	return db.WithContext(ctx).
		Model(&domain.Thought{}).
		Where("id = ?", id).
		UpdateColumn("reaction_counts", gorm.Expr(
			"json_set(COALESCE(reaction_counts, '{}'), ?, COALESCE(json_extract(reaction_counts, ?), 0) + ?)",
			path, path, delta,
		)).Error
}
