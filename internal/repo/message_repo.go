// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message model.
package repo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/domain"
)

// CreateMessage inserts a new message row.
func CreateMessage(db *gorm.DB, userID, recipientName, content string, isVoice bool, audioPath *string) (*domain.Message, error) {
	m := &domain.Message{
		ID:            uuid.NewString(),
		UserID:        userID,
		RecipientName: recipientName,
		Content:       content,
		CreatedAt:     time.Now().UTC(),
		IsRead:        false,
		IsVoice:       isVoice,
		AudioPath:     audioPath,
	}
	return m, db.Create(m).Error
}

// ListMessages returns every message sent by userID, unordered. Thread
// grouping and ordering happen in the service.
func ListMessages(db *gorm.DB, userID string) ([]domain.Message, error) {
	var out []domain.Message
	err := db.Where("user_id = ?", userID).Find(&out).Error
	return out, err
}

// ListMessagesByRecipient returns userID's messages addressed to the exact
// recipient label.
func ListMessagesByRecipient(db *gorm.DB, userID, recipientName string) ([]domain.Message, error) {
	var out []domain.Message
	err := db.
		Where("user_id = ? AND recipient_name = ?", userID, recipientName).
		Find(&out).Error
	return out, err
}

// GetUserMessage fetches a message by id scoped to its sender. Returns
// ErrNotFound when missing or sent by someone else.
func GetUserMessage(db *gorm.DB, id, userID string) (*domain.Message, error) {
	var m domain.Message
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMessage removes a single message scoped to its sender.
func DeleteMessage(db *gorm.DB, id, userID string) error {
	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteMessagesByRecipient removes all of userID's messages addressed to
// recipientName and reports how many rows went away.
func DeleteMessagesByRecipient(db *gorm.DB, userID, recipientName string) (int64, error) {
	res := db.
		Where("user_id = ? AND recipient_name = ?", userID, recipientName).
		Delete(&domain.Message{})
	return res.RowsAffected, res.Error
}

// DeleteMessagesByUser removes every message for userID (account teardown).
func DeleteMessagesByUser(db *gorm.DB, userID string) error {
	return db.Where("user_id = ?", userID).Delete(&domain.Message{}).Error
}

// MessagesStats returns the row count and newest created_at for a user's
// messages, used for ETag generation on the thread list.
func MessagesStats(db *gorm.DB, userID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.Model(&domain.Message{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
