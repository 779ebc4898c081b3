// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for direct chats
// and their participants.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only
// persistence and query composition. Membership rules live in services.
package repo

import (
	"context"
	"hash/fnv"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-direct-chat/internal/domain"
)

// FindDirectChat returns the direct chat between a and b (in either order)
// with its participants loaded. The chat is located through its unique
// direct key, then its participant set is checked to be exactly {a, b};
// a mismatch returns ErrInconsistentChat.
func FindDirectChat(ctx context.Context, db *gorm.DB, a, b uint) (*domain.Chat, error) {
	var c domain.Chat
	err := db.WithContext(ctx).
		Preload("Participants").
		Where("direct_key = ? AND type = ?", domain.DirectKey(a, b), domain.ChatTypeDirect).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	if !exactlyPair(c.Participants, a, b) {
		return nil, ErrInconsistentChat
	}
	return &c, nil
}

func exactlyPair(ps []domain.Participant, a, b uint) bool {
	if len(ps) != 2 {
		return false
	}
	x, y := ps[0].UserID, ps[1].UserID
	return (x == a && y == b) || (x == b && y == a)
}

// CreateDirectChat inserts a direct chat created by sender, both participant
// rows, and the first message in one transaction. A concurrent create for
// the same pair fails on the unique direct key and returns ErrDuplicate.
func CreateDirectChat(ctx context.Context, db *gorm.DB, senderID, recipientID uint, text string, sentAt time.Time) (*domain.Chat, *domain.Message, error) {
	key := domain.DirectKey(senderID, recipientID)
	chat := &domain.Chat{
		Type:      domain.ChatTypeDirect,
		CreatedBy: senderID,
		DirectKey: &key,
		CreatedAt: sentAt,
	}
	var msg *domain.Message
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return dupOr(err)
		}
		parts := []domain.Participant{
			{ChatID: chat.ID, UserID: senderID},
			{ChatID: chat.ID, UserID: recipientID},
		}
		if err := tx.Create(&parts).Error; err != nil {
			return dupOr(err)
		}
		chat.Participants = parts

		m, err := CreateMessage(ctx, tx, chat.ID, senderID, text, sentAt)
		if err != nil {
			return err
		}
		msg = m
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return chat, msg, nil
}

// LockDirectPair takes a transaction-scoped advisory lock keyed by the sorted
// user pair on PostgreSQL. Other dialects rely on the unique direct key
// alone, so this is a no-op there. tx must be an open transaction.
func LockDirectPair(ctx context.Context, tx *gorm.DB, a, b uint) error {
	if tx.Dialector.Name() != DriverPostgres {
		return nil
	}
	return tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", pairLockKey(a, b)).Error
}

// pairLockKey hashes the direct key into the int64 space of advisory locks.
func pairLockKey(a, b uint) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(domain.DirectKey(a, b)))
	return int64(h.Sum64())
}

// GetChatParticipants returns the participant rows of chatID. It returns
// ErrNotFound when the chat itself does not exist, so callers can tell a
// missing chat from a chat the user is not part of.
func GetChatParticipants(ctx context.Context, db *gorm.DB, chatID uint) ([]domain.Participant, error) {
	var c domain.Chat
	err := db.WithContext(ctx).
		Select("id").
		Preload("Participants").
		First(&c, chatID).Error
	if err != nil {
		return nil, err
	}
	return c.Participants, nil
}

// GetChat returns the full chat: participants with user profiles and all
// messages (oldest first) with sender profiles.
func GetChat(ctx context.Context, db *gorm.DB, chatID uint) (*domain.Chat, error) {
	var c domain.Chat
	err := db.WithContext(ctx).
		Preload("Creator").
		Preload("Participants", func(q *gorm.DB) *gorm.DB { return q.Order("participants.id ASC") }).
		Preload("Participants.User").
		Preload("Participants.User.Profile").
		Preload("Messages", func(q *gorm.DB) *gorm.DB { return q.Order("messages.sent_at ASC, messages.id ASC") }).
		Preload("Messages.Sender").
		Preload("Messages.Sender.Profile").
		First(&c, chatID).Error
	if err != nil {
		return nil, err
	}
	if c.Messages == nil {
		c.Messages = []domain.Message{}
	}
	return &c, nil
}

// ListChatsForUser returns every chat userID participates in, with
// participant profiles and only the latest message of each chat attached as
// LastMessage. Results are ordered by that message, most recent first; ties
// and chats without messages fall back to chat id descending.
func ListChatsForUser(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Chat, error) {
	out := []domain.Chat{}
	err := db.WithContext(ctx).
		Where("id IN (?)", db.Model(&domain.Participant{}).Select("chat_id").Where("user_id = ?", userID)).
		Preload("Creator").
		Preload("Participants", func(q *gorm.DB) *gorm.DB { return q.Order("participants.id ASC") }).
		Preload("Participants.User").
		Preload("Participants.User.Profile").
		Find(&out).Error
	if err != nil || len(out) == 0 {
		return out, err
	}

	ids := make([]uint, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	last, err := LatestMessages(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if m, ok := last[out[i].ID]; ok {
			m := m
			out[i].LastMessage = &m
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].LastMessage, out[j].LastMessage
		switch {
		case li != nil && lj != nil:
			if !li.SentAt.Equal(lj.SentAt) {
				return li.SentAt.After(lj.SentAt)
			}
			if li.ID != lj.ID {
				return li.ID > lj.ID
			}
		case li != nil:
			return true
		case lj != nil:
			return false
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// IsParticipant reports whether userID is a member of chatID.
func IsParticipant(ctx context.Context, db *gorm.DB, chatID, userID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Participant{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&n).Error
	return n > 0, err
}
