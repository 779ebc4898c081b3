// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (weak ETags) in the HTTP layer.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-direct-chat/internal/domain"
)

// ChatListStats returns the number of chats userID participates in and the
// highest message id across them. Messages are immutable and ids increase,
// so the pair changes whenever the chat list a user sees changes.
func ChatListStats(ctx context.Context, db *gorm.DB, userID uint) (count int64, maxMessageID uint, err error) {
	chatIDs := db.Model(&domain.Participant{}).Select("chat_id").Where("user_id = ?", userID)

	if err = db.WithContext(ctx).Model(&domain.Participant{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var row struct{ ID uint }
	err = db.WithContext(ctx).
		Model(&domain.Message{}).
		Select("id").
		Where("chat_id IN (?)", chatIDs).
		Order("id DESC").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return count, row.ID, nil
}

// MessagesStats returns the number of messages in chatID and the highest
// message id among them.
func MessagesStats(ctx context.Context, db *gorm.DB, chatID uint) (count int64, maxMessageID uint, err error) {
	q := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.Message{}).Where("chat_id = ?", chatID)
	}
	if err = q().Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}
	var row struct{ ID uint }
	if err = q().Select("id").Order("id DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.ID, nil
}
