package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-direct-chat/internal/domain"
)

func TestGetIdempotency_EmptyScopeOrKey_ReturnsNotFound(t *testing.T) {
	db := newRepoDB(t)
	now := time.Now().UTC()

	if rec, err := GetIdempotency(context.Background(), db, 1, "   ", "k1", now); rec != nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected (nil, ErrNotFound) for empty scope, got (%v, %v)", rec, err)
	}
	if rec, err := GetIdempotency(context.Background(), db, 1, "/new/message/1", "", now); rec != nil || !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected (nil, ErrNotFound) for empty key, got (%v, %v)", rec, err)
	}
}

func TestIdempotency_CreateGetDuplicateAndExpiry(t *testing.T) {
	db := newRepoDB(t)
	ctx := context.Background()

	rec, err := CreateIdempotency(ctx, db, 1, "/new/message/5", "k1", 42, 200, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == 0 || rec.MessageID != 42 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, 1, "/new/message/5", "k1", time.Now().UTC())
	if err != nil || got.MessageID != 42 {
		t.Fatalf("GetIdempotency: %v %+v", err, got)
	}

	// Other users do not see it.
	if _, err := GetIdempotency(ctx, db, 2, "/new/message/5", "k1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}

	if _, err := CreateIdempotency(ctx, db, 1, "/new/message/5", "k1", 43, 200, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// After expiry the record is invisible and the key can be reused.
	later := time.Now().UTC().Add(2 * time.Hour)
	if _, err := GetIdempotency(ctx, db, 1, "/new/message/5", "k1", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
	if err := db.Model(&domain.Idempotency{}).Where("id = ?", rec.ID).
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire record: %v", err)
	}
	again, err := CreateIdempotency(ctx, db, 1, "/new/message/5", "k1", 44, 200, time.Hour)
	if err != nil || again.MessageID != 44 {
		t.Fatalf("expected reuse after expiry, got %v %+v", err, again)
	}
}
