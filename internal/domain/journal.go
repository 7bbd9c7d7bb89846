package domain

import (
	"strconv"
	"time"
)

// MoodEntry is a single daily mood check-in on a 1–5 scale with an optional
// free-text note. Entries are append-only: they are created once and never
// updated. "Today's mood" is derived at read time, not stored.
type MoodEntry struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_mood_user"`
	Mood      int       `json:"mood"       gorm:"not null"`
	Note      *string   `json:"note,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for MoodEntry.
func (MoodEntry) TableName() string { return "mood_entries" }

// Emoji returns the face shown for the mood value. Out-of-range values
// (which validation prevents on write) render as neutral.
func (m MoodEntry) Emoji() string {
	switch m.Mood {
	case 1:
		return "😢"
	case 2:
		return "😔"
	case 3:
		return "😐"
	case 4:
		return "🙂"
	case 5:
		return "😊"
	}
	return "😐"
}

// Label returns the short description of the mood value.
func (m MoodEntry) Label() string {
	switch m.Mood {
	case 1:
		return "Very Bad"
	case 2:
		return "Bad"
	case 3:
		return "Okay"
	case 4:
		return "Good"
	case 5:
		return "Great"
	}
	return "Okay"
}

// Milestone marks a date the user is counting from (a breakup, a loss, a
// fresh start). DaysSince is derived, never stored.
type Milestone struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_milestone_user"`
	Title     string    `json:"title"      gorm:"type:varchar(255);not null"`
	EventDate time.Time `json:"event_date" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Milestone.
func (Milestone) TableName() string { return "milestones" }

// DaysSince returns the whole days elapsed between the event date and now.
// Same-day events report 0; future dates clamp to 0.
func (m Milestone) DaysSince(now time.Time) int {
	d := int(now.Sub(m.EventDate).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// TimeSinceText renders DaysSince for display ("Today", "1 day", "N days").
func (m Milestone) TimeSinceText(now time.Time) string {
	switch d := m.DaysSince(now); d {
	case 0:
		return "Today"
	case 1:
		return "1 day"
	default:
		return strconv.Itoa(d) + " days"
	}
}

// ActivityType classifies an audit record on the thought lifecycle.
type ActivityType string

// Activity types.
const (
	ActivityCreated ActivityType = "created"
	ActivityDeleted ActivityType = "deleted"
	ActivityExpired ActivityType = "expired"
)

// ThoughtActivity is an append-only audit row describing a lifecycle event on
// a thought. It feeds read-side journey analytics and is never updated.
// Writes are best-effort: a failed activity insert must not fail the
// operation it accompanies.
type ThoughtActivity struct {
	ID           string       `json:"id"            gorm:"type:char(36);primaryKey"`
	UserID       string       `json:"user_id"       gorm:"type:varchar(64);not null;index:idx_activity_user"`
	ThoughtID    *string      `json:"thought_id,omitempty" gorm:"type:char(36)"`
	ActivityType ActivityType `json:"activity_type" gorm:"type:varchar(16);not null"`
	Category     Category     `json:"category"      gorm:"type:varchar(32);not null"`
	CreatedAt    time.Time    `json:"created_at"`
	SentToEther  bool         `json:"sent_to_ether"`
}

// TableName returns the database table name for ThoughtActivity.
func (ThoughtActivity) TableName() string { return "thought_activities" }

// ReportReason enumerates why a community thought was reported.
type ReportReason string

// Report reasons.
const (
	ReasonHarmful        ReportReason = "Harmful or dangerous content"
	ReasonHarassment     ReportReason = "Harassment or bullying"
	ReasonSelfHarm       ReportReason = "Self-harm or suicide glorification"
	ReasonMisinformation ReportReason = "Misinformation"
	ReasonSpam           ReportReason = "Spam or irrelevant"
	ReasonOther          ReportReason = "Other"
)

// Valid reports whether r is one of the fixed report reasons.
func (r ReportReason) Valid() bool {
	switch r {
	case ReasonHarmful, ReasonHarassment, ReasonSelfHarm,
		ReasonMisinformation, ReasonSpam, ReasonOther:
		return true
	}
	return false
}

// ReportStatus tracks moderation progress on a content report.
type ReportStatus string

// Report statuses.
const (
	ReportPending  ReportStatus = "pending"
	ReportReviewed ReportStatus = "reviewed"
	ReportResolved ReportStatus = "resolved"
)

// ContentReport is a user-submitted report on a community thought.
type ContentReport struct {
	ID                string       `json:"id"                  gorm:"type:char(36);primaryKey"`
	ReportedThoughtID string       `json:"reported_thought_id" gorm:"type:char(36);not null;index:idx_report_thought"`
	ReportedUserID    string       `json:"reported_user_id"    gorm:"type:varchar(64);not null"`
	ReportingUserID   string       `json:"reporting_user_id"   gorm:"type:varchar(64);not null"`
	Reason            ReportReason `json:"reason"              gorm:"type:varchar(64);not null"`
	AdditionalContext *string      `json:"additional_context,omitempty" gorm:"type:text"`
	CreatedAt         time.Time    `json:"created_at"`
	Status            ReportStatus `json:"status"              gorm:"type:varchar(16);not null;default:'pending'"`
}

// TableName returns the database table name for ContentReport.
func (ContentReport) TableName() string { return "content_reports" }
