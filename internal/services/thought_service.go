// Package services – ThoughtService
//
// This file implements the ThoughtService, which owns the lifecycle of
// thoughts: validated creation (content trimming and clipping, author name
// fallback, expiry resolution), the public feed, the owner's list, and
// deletion with its audit and notification side effects.
//
// Expired thoughts are never removed here; they are filtered out at read time
// so that every reader applies the same visibility rule regardless of whether
// a background cleanup ever ran.
//
// Service-level errors (e.g. ErrEmptyContent, ErrThoughtNotFound) are returned
// for predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// anonymousName is stored when the author hides or lacks a display name.
	anonymousName = "Anonymous"

	// defaultEtherTTL is how long an ether thought lives after release.
	defaultEtherTTL = 60 * time.Second
)

// ThoughtRepo defines the repository contract required by ThoughtService.
// Implementations are responsible for persistence of thought aggregates.
type ThoughtRepo interface {
	// CreateThought inserts a new thought row, filling defaults.
	CreateThought(ctx context.Context, db *gorm.DB, t *domain.Thought) (*domain.Thought, error)

	// ListPublicThoughts returns every public thought, expired or not.
	ListPublicThoughts(ctx context.Context, db *gorm.DB) ([]domain.Thought, error)

	// ListUserThoughts returns every thought owned by the user.
	ListUserThoughts(ctx context.Context, db *gorm.DB, userID string) ([]domain.Thought, error)

	// GetUserThought fetches a thought by ID ensuring it belongs to the user.
	GetUserThought(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Thought, error)

	// DeleteThought removes a thought owned by the user.
	DeleteThought(ctx context.Context, db *gorm.DB, id, userID string) error

	// CreateActivity appends a journey audit entry.
	CreateActivity(ctx context.Context, db *gorm.DB, a *domain.ThoughtActivity) error

	// ListActivities returns the user's journey audit entries.
	ListActivities(ctx context.Context, db *gorm.DB, userID string) ([]domain.ThoughtActivity, error)
}

// ExpiryScheduler is the notification contract required by ThoughtService.
// Scheduling decisions (lead time, body truncation) live behind it.
type ExpiryScheduler interface {
	Schedule(thoughtID, content string, expiresAt time.Time)
	Cancel(thoughtID string)
}

// ThoughtService provides thought-level operations such as creating, listing,
// and deleting thoughts. It enforces content rules, resolves expiry, and
// coordinates the expiry notification schedule.
type ThoughtService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the thought repository used by this service.
	Repo ThoughtRepo
	// Scheduler manages local expiry reminders. Optional; nil disables them.
	Scheduler ExpiryScheduler

	// MaxContentRunes caps stored content by rune length.
	MaxContentRunes int
	// FeedLimit caps the public feed after expiry filtering.
	FeedLimit int
	// EtherTTL is the lifetime of a thought released to the ether.
	EtherTTL time.Duration
}

// NewThoughtService constructs a ThoughtService with sane defaults for
// content handling and feed sizing.
func NewThoughtService(db *gorm.DB, r ThoughtRepo, sched ExpiryScheduler) *ThoughtService {
	return &ThoughtService{
		DB:              db,
		Repo:            r,
		Scheduler:       sched,
		MaxContentRunes: 2000,
		FeedLimit:       50,
		EtherTTL:        defaultEtherTTL,
	}
}

// CreateThoughtInput carries the caller-provided fields for a new thought.
type CreateThoughtInput struct {
	Content     string
	Category    domain.Category
	IsPublic    bool
	Anonymous   bool
	SendToEther bool
	// KeepForDays, when set, pins a retention window in days. Ignored when
	// SendToEther is set; ether always wins.
	KeepForDays *int
}

// Create validates and persists a new thought owned by userID.
//
// Semantics:
//   - Content is trimmed; blank content yields ErrEmptyContent.
//   - Content is clipped to MaxContentRunes runes.
//   - The stored author name is "Anonymous" when Anonymous is set or the
//     caller has no display name; otherwise displayName is used verbatim.
//   - Expiry resolution: SendToEther pins expiry to now+EtherTTL regardless of
//     KeepForDays; otherwise KeepForDays sets expiry that many days out; with
//     neither, the thought never expires.
//   - A local expiry reminder is scheduled for expiring thoughts.
//   - A "created" journey entry is appended best-effort; its failure never
//     fails the create.
func (s *ThoughtService) Create(ctx context.Context, userID, displayName string, in CreateThoughtInput) (*domain.Thought, error) {
	tr := otel.Tracer("services/ThoughtService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	content = s.clip(content)

	category := in.Category
	if category == "" {
		category = domain.CategoryReflection
	}
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	name := displayName
	if in.Anonymous || strings.TrimSpace(name) == "" {
		name = anonymousName
	}

	now := time.Now().UTC()
	t := &domain.Thought{
		UserID:    userID,
		UserName:  name,
		Content:   content,
		IsPublic:  in.IsPublic,
		Category:  category,
		CreatedAt: now,
		IsVoice:   false,
		ExpiresAt: resolveExpiry(now, in.SendToEther, s.EtherTTL, in.KeepForDays),
	}

	created, err := s.Repo.CreateThought(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}

	if created.ExpiresAt != nil && s.Scheduler != nil {
		s.Scheduler.Schedule(created.ID, created.Content, *created.ExpiresAt)
	}

	s.appendActivity(ctx, &domain.ThoughtActivity{
		UserID:       userID,
		ThoughtID:    &created.ID,
		ActivityType: domain.ActivityCreated,
		Category:     created.Category,
		SentToEther:  in.SendToEther,
	})

	return created, nil
}

// PublicFeed returns live public thoughts, newest first, capped at FeedLimit.
// Expiry is evaluated against the current clock at read time.
func (s *ThoughtService) PublicFeed(ctx context.Context) ([]domain.Thought, error) {
	tr := otel.Tracer("services/ThoughtService")
	ctx, span := tr.Start(ctx, "PublicFeed")
	defer span.End()

	all, err := s.Repo.ListPublicThoughts(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	live := filterLive(all, time.Now().UTC())
	sortNewestFirst(live)
	if s.FeedLimit > 0 && len(live) > s.FeedLimit {
		live = live[:s.FeedLimit]
	}
	return live, nil
}

// OwnThoughts returns the user's live thoughts, newest first. The owner is
// subject to the same expiry filter as everyone else.
func (s *ThoughtService) OwnThoughts(ctx context.Context, userID string) ([]domain.Thought, error) {
	tr := otel.Tracer("services/ThoughtService")
	ctx, span := tr.Start(ctx, "OwnThoughts",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	all, err := s.Repo.ListUserThoughts(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	live := filterLive(all, time.Now().UTC())
	sortNewestFirst(live)
	return live, nil
}

// Get fetches a single thought owned by userID.
func (s *ThoughtService) Get(ctx context.Context, userID, id string) (*domain.Thought, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	t, err := s.Repo.GetUserThought(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThoughtNotFound
		}
		return nil, err
	}
	return t, nil
}

// Delete removes a thought owned by userID. The "deleted" journey entry is
// appended before the row disappears so the audit survives the deletion; any
// pending expiry reminder is cancelled on success.
func (s *ThoughtService) Delete(ctx context.Context, userID, id string) error {
	tr := otel.Tracer("services/ThoughtService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("thought.id", id),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	if userID == "" {
		return ErrNotAuthenticated
	}
	t, err := s.Repo.GetUserThought(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrThoughtNotFound
		}
		return err
	}

	s.appendActivity(ctx, &domain.ThoughtActivity{
		UserID:       userID,
		ThoughtID:    &t.ID,
		ActivityType: domain.ActivityDeleted,
		Category:     t.Category,
	})

	if err := s.Repo.DeleteThought(ctx, s.DB, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrThoughtNotFound
		}
		return err
	}
	if s.Scheduler != nil {
		s.Scheduler.Cancel(id)
	}
	return nil
}

// JourneySummary aggregates the user's journey audit entries over the last
// `days` days. Aggregation is client-side over a plain per-user fetch.
type JourneySummary struct {
	Days        int                     `json:"days"`
	Created     int                     `json:"created"`
	Deleted     int                     `json:"deleted"`
	Expired     int                     `json:"expired"`
	SentToEther int                     `json:"sent_to_ether"`
	ByCategory  map[domain.Category]int `json:"by_category"`
}

// Journey computes a summary of the user's activity over the last `days` days
// (all history when days <= 0).
func (s *ThoughtService) Journey(ctx context.Context, userID string, days int) (*JourneySummary, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	acts, err := s.Repo.ListActivities(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	cutoff := time.Time{}
	if days > 0 {
		cutoff = time.Now().UTC().AddDate(0, 0, -days)
	}
	sum := &JourneySummary{Days: days, ByCategory: map[domain.Category]int{}}
	for _, a := range acts {
		if !cutoff.IsZero() && a.CreatedAt.Before(cutoff) {
			continue
		}
		switch a.ActivityType {
		case domain.ActivityCreated:
			sum.Created++
			sum.ByCategory[a.Category]++
		case domain.ActivityDeleted:
			sum.Deleted++
		case domain.ActivityExpired:
			sum.Expired++
		}
		if a.SentToEther {
			sum.SentToEther++
		}
	}
	return sum, nil
}

// appendActivity writes a journey entry and only logs on failure. Audit
// writes must never fail the operation they describe.
func (s *ThoughtService) appendActivity(ctx context.Context, a *domain.ThoughtActivity) {
	if err := s.Repo.CreateActivity(ctx, s.DB, a); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("user_id", a.UserID).
			Str("type", string(a.ActivityType)).
			Msg("journey activity write failed")
	}
}

// clip truncates content to the configured maximum rune length.
func (s *ThoughtService) clip(content string) string {
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return string([]rune(content)[:s.MaxContentRunes])
	}
	return content
}

// resolveExpiry applies the expiry precedence rule: ether beats an explicit
// retention window, and with neither the thought is permanent.
func resolveExpiry(now time.Time, ether bool, etherTTL time.Duration, keepForDays *int) *time.Time {
	switch {
	case ether:
		t := now.Add(etherTTL)
		return &t
	case keepForDays != nil:
		t := now.AddDate(0, 0, *keepForDays)
		return &t
	default:
		return nil
	}
}

// filterLive drops expired thoughts. A nil expiry means the thought is
// permanent.
func filterLive(in []domain.Thought, now time.Time) []domain.Thought {
	out := make([]domain.Thought, 0, len(in))
	for _, t := range in {
		if t.Expired(now) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// sortNewestFirst orders thoughts by creation time descending, with ID as a
// deterministic tiebreaker.
func sortNewestFirst(ts []domain.Thought) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].ID > ts[j].ID
		}
		return ts[i].CreatedAt.After(ts[j].CreatedAt)
	})
}
