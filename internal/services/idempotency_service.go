package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-direct-chat/internal/domain"
	"github.com/tbourn/go-direct-chat/internal/repo"
)

// DefaultIdempotencyTTL is how long a remembered POST result can be replayed.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyService looks up which message a keyed POST produced so a
// retried request returns the same message instead of inserting another.
// The records themselves are written by ChatService under a claim.
type IdempotencyService struct {
	DB *gorm.DB

	StoreTimeout time.Duration
}

// Replay returns the message stored for (userID, scope, key), or nil when
// there is nothing to replay.
func (s *IdempotencyService) Replay(ctx context.Context, userID uint, scope, key string) (*domain.Message, error) {
	if key == "" {
		return nil, nil
	}
	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	rec, err := repo.GetIdempotency(sctx, s.DB, userID, scope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}
	msg, err := repo.GetMessage(sctx, s.DB, rec.MessageID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	return msg, storeErr(err)
}

// IdempotencyClaim names the Idempotency-Key a write runs under. Scope is
// the request path.
type IdempotencyClaim struct {
	Scope string
	Key   string
}

type idemClaimKey struct{}

// WithIdempotencyClaim attaches a claim to ctx. Message writes running under
// it record (user, scope, key) in the same transaction as the message, so
// two concurrent requests with one key store a single message.
func WithIdempotencyClaim(ctx context.Context, scope, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, idemClaimKey{}, IdempotencyClaim{Scope: scope, Key: key})
}

// IdempotencyClaimFrom returns the claim attached by WithIdempotencyClaim.
func IdempotencyClaimFrom(ctx context.Context) (IdempotencyClaim, bool) {
	c, ok := ctx.Value(idemClaimKey{}).(IdempotencyClaim)
	return c, ok
}

// errKeyClaimed means another request already stored a message under the
// same claim; the current transaction must roll back.
var errKeyClaimed = errors.New("idempotency key already claimed")

// claimKey records the claim in ctx, if any, against messageID inside tx.
func claimKey(ctx context.Context, tx *gorm.DB, userID, messageID uint, ttl time.Duration) error {
	claim, ok := IdempotencyClaimFrom(ctx)
	if !ok {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	_, err := repo.CreateIdempotency(ctx, tx, userID, claim.Scope, claim.Key, messageID, http.StatusOK, ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return errKeyClaimed
	}
	return err
}

// claimedMessage loads the message the winning request stored under the
// claim in ctx.
func claimedMessage(ctx context.Context, db *gorm.DB, userID uint) (*domain.Message, error) {
	claim, _ := IdempotencyClaimFrom(ctx)
	rec, err := repo.GetIdempotency(ctx, db, userID, claim.Scope, claim.Key, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return repo.GetMessage(ctx, db, rec.MessageID)
}
