// Package cache holds the optional Redis-backed read cache for the user
// directory. The database stays the source of truth; callers treat every
// cache error as a miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-direct-chat/internal/domain"
)

// DefaultDirectoryTTL bounds how stale a cached directory can get when an
// invalidation is lost.
const DefaultDirectoryTTL = time.Minute

const (
	directoryKey  = "users:directory"
	generationKey = "users:directory:gen"
)

var (
	// ErrMiss is returned by Get when nothing is cached.
	ErrMiss = errors.New("cache: miss")
	// ErrStale is returned by Set when the directory was invalidated after
	// the caller read its generation.
	ErrStale = errors.New("cache: stale directory")
)

// UserDirectory caches the full user list (with profiles, without password
// hashes) under a single key.
type UserDirectory struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserDirectory wraps client. A non-positive ttl uses DefaultDirectoryTTL.
func NewUserDirectory(client *redis.Client, ttl time.Duration) *UserDirectory {
	if ttl <= 0 {
		ttl = DefaultDirectoryTTL
	}
	return &UserDirectory{client: client, ttl: ttl}
}

// Get returns the cached directory or ErrMiss.
func (d *UserDirectory) Get(ctx context.Context) ([]domain.User, error) {
	data, err := d.client.Get(ctx, directoryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Generation returns the invalidation counter. Read it before loading the
// directory from the database and hand it to Set.
func (d *UserDirectory) Generation(ctx context.Context) (int64, error) {
	return generation(ctx, d.client)
}

func generation(ctx context.Context, c redis.Cmdable) (int64, error) {
	n, err := c.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Set stores users with the configured TTL unless an invalidation happened
// since gen was read, in which case it stores nothing and returns ErrStale.
func (d *UserDirectory) Set(ctx context.Context, gen int64, users []domain.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	err = d.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(ctx, tx)
		if err != nil {
			return err
		}
		if cur != gen {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, directoryKey, data, d.ttl)
			return nil
		})
		return err
	}, generationKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

// Invalidate bumps the generation and drops the cached directory.
// Registration and profile edits call it after their commit.
func (d *UserDirectory) Invalidate(ctx context.Context) error {
	_, err := d.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, generationKey)
		p.Del(ctx, directoryKey)
		return nil
	})
	return err
}

// NewRedisClient connects to addr and pings it so a bad address fails at
// startup instead of on the first request.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
