// Package domain defines the persistence models for thoughts, saves,
// reactions, moods, milestones, messages, and audit records. These types are
// mapped with GORM and form the core data layer of the journaling backend.
package domain

import (
	"time"
)

// Category classifies a thought. The set is fixed; unknown values decode to
// CategoryReflection on the read path (see repo package).
type Category string

// Thought categories.
const (
	CategoryBreakup    Category = "Breakup"
	CategoryGrief      Category = "Grief"
	CategoryAnxiety    Category = "Anxiety"
	CategoryHealing    Category = "Healing"
	CategoryGratitude  Category = "Gratitude"
	CategoryReflection Category = "Reflection"
	CategoryOther      Category = "Other"
)

// Categories lists all valid thought categories.
func Categories() []Category {
	return []Category{
		CategoryBreakup, CategoryGrief, CategoryAnxiety, CategoryHealing,
		CategoryGratitude, CategoryReflection, CategoryOther,
	}
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBreakup, CategoryGrief, CategoryAnxiety, CategoryHealing,
		CategoryGratitude, CategoryReflection, CategoryOther:
		return true
	}
	return false
}

// Thought is a single journal entry, either private or shared to the public
// feed. Thoughts may carry an expiry timestamp; an expired thought is
// logically deleted for every read path even while the row still exists
// (reads filter, nothing sweeps).
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the author; indexed for owner-scoped reads.
//   - UserName: display name snapshot, "Anonymous" for anonymous posts.
//   - Content: trimmed text, at most 2000 runes, never empty.
//   - IsPublic: whether the thought appears in the community feed.
//   - ExpiresAt: optional expiry; nil means kept indefinitely.
//   - IsVoice / AudioPath: voice-note flag and blob reference.
//   - SaveCount: denormalized save counter (join rows are source of truth).
//   - ReactionCounts: denormalized per-kind reaction counters.
type Thought struct {
	ID             string         `json:"id"              gorm:"type:char(36);primaryKey"`
	UserID         string         `json:"user_id"         gorm:"type:varchar(64);not null;index:idx_user_thoughts"`
	UserName       string         `json:"user_name"       gorm:"type:varchar(128);not null"`
	Content        string         `json:"content"         gorm:"type:text;not null"`
	IsPublic       bool           `json:"is_public"       gorm:"not null;index:idx_public_thoughts"`
	Category       Category       `json:"category"        gorm:"type:varchar(32);not null;default:'Reflection'"`
	CreatedAt      time.Time      `json:"created_at"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	IsVoice        bool           `json:"is_voice"`
	AudioPath      *string        `json:"audio_path,omitempty" gorm:"type:text"`
	SaveCount      int            `json:"save_count"      gorm:"not null;default:0"`
	ReactionCounts map[string]int `json:"reaction_counts" gorm:"serializer:json"`
}

// TableName returns the database table name for Thought.
func (Thought) TableName() string { return "thoughts" }

// Expired reports whether the thought is logically deleted at the given time.
// A thought with no expiry never expires.
func (t Thought) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

// SavedThought is the join row recording that a user bookmarked a thought.
// At most one row is meaningful per (user_id, thought_id) pair; duplicates
// from racing writes are reconciled lazily when the full saved list loads.
type SavedThought struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	ThoughtID string    `json:"thought_id" gorm:"type:char(36);not null;index:idx_saved_thought"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_saved_user"`
	SavedAt   time.Time `json:"saved_at"`
}

// TableName returns the database table name for SavedThought.
func (SavedThought) TableName() string { return "saved_thoughts" }

// ReactionKind names one of the fixed community reactions.
type ReactionKind string

// Reaction kinds and their display labels.
const (
	ReactionHeart   ReactionKind = "heart"   // Support
	ReactionSparkle ReactionKind = "sparkle" // Inspiring
	ReactionPeace   ReactionKind = "peace"   // Peaceful
	ReactionGrowth  ReactionKind = "growth"  // Growth
)

// ReactionKinds lists all valid reaction kinds.
func ReactionKinds() []ReactionKind {
	return []ReactionKind{ReactionHeart, ReactionSparkle, ReactionPeace, ReactionGrowth}
}

// Valid reports whether k is one of the fixed reaction kinds.
func (k ReactionKind) Valid() bool {
	switch k {
	case ReactionHeart, ReactionSparkle, ReactionPeace, ReactionGrowth:
		return true
	}
	return false
}

// Label returns the human-readable name shown next to the reaction.
func (k ReactionKind) Label() string {
	switch k {
	case ReactionHeart:
		return "Support"
	case ReactionSparkle:
		return "Inspiring"
	case ReactionPeace:
		return "Peaceful"
	case ReactionGrowth:
		return "Growth"
	}
	return string(k)
}

// Reaction is the join row recording a user's reaction of a given kind on a
// thought. At most one row is meaningful per (thought_id, user_id, kind);
// adds are no-ops when a row exists, removes delete all matching rows.
type Reaction struct {
	ID        string       `json:"id"         gorm:"type:char(36);primaryKey"`
	ThoughtID string       `json:"thought_id" gorm:"type:char(36);not null;index:idx_reaction_thought"`
	UserID    string       `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_reaction_user"`
	Kind      ReactionKind `json:"kind"       gorm:"type:varchar(16);not null"`
	CreatedAt time.Time    `json:"created_at"`
}

// TableName returns the database table name for Reaction.
func (Reaction) TableName() string { return "reactions" }
