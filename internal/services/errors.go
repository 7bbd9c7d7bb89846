// Package services defines the business logic for thoughts, reactions, moods,
// messages, milestones, and reports. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/repo"
)

// Authentication and ownership errors.
var (
	// ErrNotAuthenticated is returned when an operation that requires a signed-in
	// user is attempted without one.
	ErrNotAuthenticated = errors.New("user not authenticated")
)

// Thought-related errors.
var (
	// ErrEmptyContent is returned when a request to create a thought or message
	// contains only whitespace.
	ErrEmptyContent = errors.New("content is empty")

	// ErrInvalidCategory is returned when a thought category is outside the
	// allowed set.
	ErrInvalidCategory = errors.New("invalid thought category")

	// ErrThoughtNotFound indicates that the requested thought does not exist or
	// is not accessible to the current user.
	ErrThoughtNotFound = errors.New("thought not found")

	// ErrInvalidReaction is returned when a reaction kind is outside the
	// allowed set.
	ErrInvalidReaction = errors.New("invalid reaction kind")
)

// Mood-related errors.
var (
	// ErrInvalidMood is returned when a mood value is outside the 1..5 scale.
	ErrInvalidMood = errors.New("mood value must be between 1 and 5")
)

// Message-related errors.
var (
	// ErrEmptyRecipient is returned when a message is addressed to a blank
	// recipient label.
	ErrEmptyRecipient = errors.New("recipient is empty")

	// ErrEmptyAudio is returned when a voice message upload has no audio data.
	ErrEmptyAudio = errors.New("audio recording is empty")

	// ErrMessageNotFound indicates that the requested message does not exist or
	// is not accessible to the current user.
	ErrMessageNotFound = errors.New("message not found")
)

// Milestone- and report-related errors.
var (
	// ErrEmptyTitle is returned when a milestone title is blank.
	ErrEmptyTitle = errors.New("title is empty")

	// ErrMilestoneNotFound indicates that the requested milestone does not
	// exist or is not accessible to the current user.
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrInvalidReason is returned when a content report reason is outside the
	// allowed set.
	ErrInvalidReason = errors.New("invalid report reason")
)

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
