// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-direct-chat/internal/domain"
)

// CreateMessage inserts a new message row and returns it with the sender and
// the sender's profile attached.
func CreateMessage(ctx context.Context, db *gorm.DB, chatID, senderID uint, text string, sentAt time.Time) (*domain.Message, error) {
	m := &domain.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Text:     text,
		SentAt:   sentAt.UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	var sender domain.User
	if err := db.WithContext(ctx).Preload("Profile").First(&sender, senderID).Error; err != nil {
		return nil, err
	}
	m.Sender = &sender
	return m, nil
}

// GetMessage fetches a message by ID with its sender profile.
func GetMessage(ctx context.Context, db *gorm.DB, id uint) (*domain.Message, error) {
	var m domain.Message
	err := db.WithContext(ctx).
		Preload("Sender").
		Preload("Sender.Profile").
		First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// LatestMessages returns the most recent message (by sent_at, then id) of
// each chat in chatIDs, keyed by chat id. Chats without messages are absent.
func LatestMessages(ctx context.Context, db *gorm.DB, chatIDs []uint) (map[uint]domain.Message, error) {
	out := make(map[uint]domain.Message, len(chatIDs))
	if len(chatIDs) == 0 {
		return out, nil
	}
	var rows []domain.Message
	err := db.WithContext(ctx).
		Preload("Sender").
		Preload("Sender.Profile").
		Where("messages.chat_id IN ?", chatIDs).
		Where(`messages.id = (SELECT m2.id FROM messages m2 WHERE m2.chat_id = messages.chat_id
			ORDER BY m2.sent_at DESC, m2.id DESC LIMIT 1)`).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.ChatID] = m
	}
	return out, nil
}
