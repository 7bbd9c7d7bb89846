package domain

import "time"

// Message is a letter written to someone the author cannot reach. The
// recipient is a free-text label typed by the author, not a reference to a
// real account; two recipients who happen to share a typed name are the same
// thread. Voice messages carry a blob reference into object storage.
type Message struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	UserID        string    `json:"user_id"        gorm:"type:varchar(64);not null;index:idx_msg_user"`
	RecipientName string    `json:"recipient_name" gorm:"type:varchar(128);not null;index:idx_msg_recipient"`
	Content       string    `json:"content"        gorm:"type:text;not null"`
	CreatedAt     time.Time `json:"created_at"`
	IsRead        bool      `json:"is_read"`
	IsVoice       bool      `json:"is_voice"`
	AudioPath     *string   `json:"audio_path,omitempty" gorm:"type:text"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// MessageThread groups all of a sender's messages sharing one recipient
// label. It is derived on read, never persisted; the thread key is the exact
// recipient string.
type MessageThread struct {
	RecipientName string    `json:"recipient_name"`
	DisplayName   string    `json:"display_name"`
	Messages      []Message `json:"messages"`
}

// LastMessageDate returns the created-at of the thread's most recent message.
// Messages are kept in ascending order, so this is the final element.
func (t MessageThread) LastMessageDate() time.Time {
	if len(t.Messages) == 0 {
		return time.Time{}
	}
	return t.Messages[len(t.Messages)-1].CreatedAt
}

// MessageDayGroup buckets a thread's messages by calendar day for display.
type MessageDayGroup struct {
	Day      time.Time `json:"day"`
	Messages []Message `json:"messages"`
}
