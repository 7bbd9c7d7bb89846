// Package notify schedules local reminders for expiring thoughts.
//
// Timing follows a coarse tiered rule driven only by the remaining lifetime:
// very short-lived thoughts get no reminder at all, long-lived ones are
// reminded a day before the end, and everything in between is reminded at the
// midpoint of its remaining life. Delivery is abstracted behind Sink so the
// scheduler itself stays a pure timing component.
package notify

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

const (
	// minLifetime is the remaining lifetime below which no reminder is worth
	// scheduling.
	minLifetime = 10 * time.Minute

	// longLifetime is the remaining lifetime above which the reminder fires a
	// fixed day before expiry instead of at the midpoint.
	longLifetime = 48 * time.Hour

	// reminderTitle is the fixed title of every expiry reminder.
	reminderTitle = "Your thought is expiring soon"

	// maxBodyRunes caps the reminder body by rune length.
	maxBodyRunes = 120
)

// Reminder is a scheduled expiry notification.
type Reminder struct {
	ThoughtID string
	Title     string
	Body      string
	FireAt    time.Time
}

// Sink delivers a reminder when its timer fires.
type Sink interface {
	Deliver(r Reminder)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(r Reminder)

// Deliver calls f(r).
func (f SinkFunc) Deliver(r Reminder) { f(r) }

// ReminderAt computes when a reminder for a thought expiring at expiresAt
// should fire, relative to now. It returns false when the remaining lifetime
// is too short to bother.
func ReminderAt(now, expiresAt time.Time) (time.Time, bool) {
	remaining := expiresAt.Sub(now)
	switch {
	case remaining <= minLifetime:
		return time.Time{}, false
	case remaining > longLifetime:
		return expiresAt.Add(-24 * time.Hour), true
	default:
		return now.Add(remaining / 2), true
	}
}

// Scheduler owns one pending timer per thought. All methods are safe for
// concurrent use.
type Scheduler struct {
	sink Sink

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewScheduler constructs a Scheduler delivering through sink.
func NewScheduler(sink Sink) *Scheduler {
	return &Scheduler{
		sink:   sink,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms a reminder for the thought. A thought whose remaining
// lifetime is too short gets none. Re-scheduling an already-armed thought
// replaces its timer.
func (s *Scheduler) Schedule(thoughtID, content string, expiresAt time.Time) {
	now := time.Now().UTC()
	fireAt, ok := ReminderAt(now, expiresAt)
	if !ok {
		return
	}

	r := Reminder{
		ThoughtID: thoughtID,
		Title:     reminderTitle,
		Body:      clipBody(content),
		FireAt:    fireAt,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[thoughtID]; ok {
		t.Stop()
	}
	s.timers[thoughtID] = time.AfterFunc(fireAt.Sub(now), func() {
		s.mu.Lock()
		delete(s.timers, thoughtID)
		s.mu.Unlock()

		log.Debug().Str("thought_id", thoughtID).Msg("expiry reminder fired")
		s.sink.Deliver(r)
	})
}

// Cancel disarms the thought's pending reminder. Cancelling a thought with no
// pending reminder is a no-op.
func (s *Scheduler) Cancel(thoughtID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[thoughtID]; ok {
		t.Stop()
		delete(s.timers, thoughtID)
	}
}

// CancelAll disarms every pending reminder.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending reports the number of armed reminders.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// clipBody truncates content to the reminder body limit.
func clipBody(content string) string {
	if utf8.RuneCountInString(content) <= maxBodyRunes {
		return content
	}
	return string([]rune(content)[:maxBodyRunes])
}
