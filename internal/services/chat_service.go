// Package services – ChatService
//
// ChatService serves the user directory, the caller's chat list, single
// chats and message posting. Membership is checked here: a chat that does
// not exist is ErrChatNotFound, a chat the caller is not part of is
// ErrNotParticipant.
//
// Direct chats are find-or-create: one transaction looks the pair up by its
// direct key and either appends to the existing chat or creates the chat,
// both participants and the first message. Two concurrent creates for the
// same pair collide on the unique key; the loser retries and appends.
//
// A write running under an idempotency claim (see WithIdempotencyClaim)
// records the claim in the message transaction. When the claim is already
// taken the transaction rolls back and the earlier message is returned.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-direct-chat/internal/cache"
	"github.com/tbourn/go-direct-chat/internal/domain"
	"github.com/tbourn/go-direct-chat/internal/repo"
)

// maxDirectAttempts bounds find-or-create retries after a lost race.
const maxDirectAttempts = 3

// UserDirectory is a read cache of every user with profile, ordered by
// username. Any error is treated as a miss. Set must refuse to store when
// Invalidate ran after gen was read from Generation, so a list loaded before
// a registration commits is never cached.
type UserDirectory interface {
	Get(ctx context.Context) ([]domain.User, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, gen int64, users []domain.User) error
	Invalidate(ctx context.Context) error
}

// ChatService implements chat and message use-cases.
type ChatService struct {
	DB *gorm.DB

	// Users is optional.
	Users UserDirectory

	StoreTimeout    time.Duration
	MaxMessageRunes int
	IdempotencyTTL  time.Duration

	// Now is the message clock; defaults to time.Now.
	Now func() time.Time
}

// NewChatService returns a ChatService with default limits.
func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{
		DB:              db,
		StoreTimeout:    DefaultStoreTimeout,
		MaxMessageRunes: 4000,
		IdempotencyTTL:  DefaultIdempotencyTTL,
		Now:             time.Now,
	}
}

func (s *ChatService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func tracer() trace.Tracer { return otel.Tracer("services/ChatService") }

// ListUsers returns every user except callerID, with profiles, ordered by
// username.
func (s *ChatService) ListUsers(ctx context.Context, callerID uint) ([]domain.User, error) {
	ctx, span := tracer().Start(ctx, "ListUsers")
	defer span.End()

	if s.Users != nil {
		if all, err := s.Users.Get(ctx); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return excludeUser(all, callerID), nil
		}
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()
	if s.Users == nil {
		users, err := repo.ListUsers(sctx, s.DB, callerID)
		return users, storeErr(err)
	}

	gen, genErr := s.Users.Generation(ctx)
	all, err := repo.ListUsers(sctx, s.DB, 0)
	if err != nil {
		return nil, storeErr(err)
	}
	switch {
	case genErr != nil:
		log.Warn().Err(genErr).Msg("user directory generation read failed")
	default:
		if err := s.Users.Set(ctx, gen, all); errors.Is(err, cache.ErrStale) {
			span.AddEvent("directory invalidated during load, not cached")
		} else if err != nil {
			log.Warn().Err(err).Msg("user directory cache write failed")
		}
	}
	return excludeUser(all, callerID), nil
}

func excludeUser(users []domain.User, id uint) []domain.User {
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

// ListChats returns userID's chats with participants and the latest message
// only, most recently active first.
func (s *ChatService) ListChats(ctx context.Context, userID uint) ([]domain.Chat, error) {
	ctx, span := tracer().Start(ctx, "ListChats",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))))
	defer span.End()

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()
	chats, err := repo.ListChatsForUser(sctx, s.DB, userID)
	return chats, storeErr(err)
}

// ListVersion returns a cheap fingerprint of userID's chat list for
// conditional requests.
func (s *ChatService) ListVersion(ctx context.Context, userID uint) (string, error) {
	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()
	n, maxID, err := repo.ChatListStats(sctx, s.DB, userID)
	if err != nil {
		return "", storeErr(err)
	}
	return fmt.Sprintf("chats:%d:%d:%d", userID, n, maxID), nil
}

// EnsureParticipant returns nil when userID is a member of chatID,
// ErrChatNotFound when the chat does not exist and ErrNotParticipant
// otherwise.
func (s *ChatService) EnsureParticipant(ctx context.Context, userID, chatID uint) error {
	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()
	return storeErr(ensureParticipant(sctx, s.DB, userID, chatID))
}

// ensureParticipant answers members with one count query; only a miss loads
// the chat to tell a missing chat from a foreign one.
func ensureParticipant(ctx context.Context, db *gorm.DB, userID, chatID uint) error {
	ok, err := repo.IsParticipant(ctx, db, chatID, userID)
	if err != nil || ok {
		return err
	}
	if _, err := repo.GetChatParticipants(ctx, db, chatID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrChatNotFound
		}
		return err
	}
	return ErrNotParticipant
}

// GetChat returns the full chat after checking that userID belongs to it.
func (s *ChatService) GetChat(ctx context.Context, userID, chatID uint) (*domain.Chat, error) {
	ctx, span := tracer().Start(ctx, "GetChat",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.Int64("chat.id", int64(chatID)),
		))
	defer span.End()

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	c, err := repo.GetChat(sctx, s.DB, chatID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	if !c.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return c, nil
}

// ChatVersion returns a fingerprint of chatID's messages after the same
// membership check as GetChat.
func (s *ChatService) ChatVersion(ctx context.Context, userID, chatID uint) (string, error) {
	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()
	if err := ensureParticipant(sctx, s.DB, userID, chatID); err != nil {
		return "", storeErr(err)
	}
	n, maxID, err := repo.MessagesStats(sctx, s.DB, chatID)
	if err != nil {
		return "", storeErr(err)
	}
	return fmt.Sprintf("chat:%d:%d:%d", chatID, n, maxID), nil
}

// StartDirectChat sends text from senderID to recipientID, creating their
// direct chat when none exists. It returns the stored message with sender.
func (s *ChatService) StartDirectChat(ctx context.Context, senderID, recipientID uint, text string) (*domain.Message, error) {
	ctx, span := tracer().Start(ctx, "StartDirectChat",
		trace.WithAttributes(
			attribute.Int64("sender.id", int64(senderID)),
			attribute.Int64("recipient.id", int64(recipientID)),
		))
	defer span.End()

	if senderID == recipientID {
		return nil, ErrSelfChat
	}
	text, err := cleanMessage(text, s.MaxMessageRunes)
	if err != nil {
		return nil, err
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		msg, created, err := s.findOrCreate(sctx, senderID, recipientID, text)
		if err == nil {
			if created {
				directChatsCreated.Inc()
			}
			messagesPosted.Inc()
			span.SetAttributes(
				attribute.Bool("chat.created", created),
				attribute.Int64("chat.id", int64(msg.ChatID)),
			)
			return msg, nil
		}
		if errors.Is(err, errKeyClaimed) {
			span.AddEvent("idempotency key already claimed")
			m, err := claimedMessage(sctx, s.DB, senderID)
			return m, storeErr(err)
		}
		if !errors.Is(err, repo.ErrDuplicate) || attempt >= maxDirectAttempts {
			if errors.Is(err, repo.ErrInconsistentChat) {
				log.Error().Str("direct_key", domain.DirectKey(senderID, recipientID)).Msg("direct chat has unexpected participants")
			}
			return nil, storeErr(err)
		}
		span.AddEvent("direct chat create lost a race, retrying")
	}
}

func (s *ChatService) findOrCreate(ctx context.Context, senderID, recipientID uint, text string) (*domain.Message, bool, error) {
	var (
		msg     *domain.Message
		created bool
	)
	sentAt := s.now()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.LockDirectPair(ctx, tx, senderID, recipientID); err != nil {
			return err
		}
		ok, err := repo.UserExists(ctx, tx, recipientID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}

		chat, err := repo.FindDirectChat(ctx, tx, senderID, recipientID)
		switch {
		case err == nil:
			msg, err = repo.CreateMessage(ctx, tx, chat.ID, senderID, text, sentAt)
		case errors.Is(err, repo.ErrNotFound):
			_, msg, err = repo.CreateDirectChat(ctx, tx, senderID, recipientID, text, sentAt)
			created = err == nil
		}
		if err != nil {
			return err
		}
		return claimKey(ctx, tx, senderID, msg.ID, s.IdempotencyTTL)
	})
	if err != nil {
		return nil, false, err
	}
	return msg, created, nil
}

// PostMessage appends text from senderID to chatID. The membership check and
// the insert share one transaction.
func (s *ChatService) PostMessage(ctx context.Context, senderID, chatID uint, text string) (*domain.Message, error) {
	ctx, span := tracer().Start(ctx, "PostMessage",
		trace.WithAttributes(
			attribute.Int64("sender.id", int64(senderID)),
			attribute.Int64("chat.id", int64(chatID)),
		))
	defer span.End()

	text, err := cleanMessage(text, s.MaxMessageRunes)
	if err != nil {
		return nil, err
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	var msg *domain.Message
	err = s.DB.WithContext(sctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureParticipant(sctx, tx, senderID, chatID); err != nil {
			return err
		}
		m, err := repo.CreateMessage(sctx, tx, chatID, senderID, text, s.now())
		if err != nil {
			return err
		}
		msg = m
		return claimKey(sctx, tx, senderID, m.ID, s.IdempotencyTTL)
	})
	if errors.Is(err, errKeyClaimed) {
		span.AddEvent("idempotency key already claimed")
		m, err := claimedMessage(sctx, s.DB, senderID)
		return m, storeErr(err)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	messagesPosted.Inc()
	return msg, nil
}

// invalidateDirectory drops the cached directory, logging failures; the TTL
// bounds staleness when Redis is unreachable.
func invalidateDirectory(ctx context.Context, users UserDirectory) {
	if users == nil {
		return
	}
	if err := users.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("user directory cache invalidation failed")
	}
}
