package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-direct-chat/internal/auth"
	"github.com/tbourn/go-direct-chat/internal/cache"
	"github.com/tbourn/go-direct-chat/internal/domain"
	"github.com/tbourn/go-direct-chat/internal/repo"
)

const testSecret = "services-test-secret-0123"

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "svc.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newDirectory(t *testing.T) (*miniredis.Miniredis, *cache.UserDirectory) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, cache.NewUserDirectory(client, time.Minute)
}

func newAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		DB:        db,
		Passwords: auth.NewPasswordHasher(bcrypt.MinCost),
		Tokens:    auth.NewTokenManager(testSecret, 0, "test"),
	}
}

// stepClock returns a clock that advances one second per call so message
// order is deterministic.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newChatService(db *gorm.DB) *ChatService {
	s := NewChatService(db)
	s.Now = stepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return s
}

func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u, err := repo.CreateUserWithProfile(context.Background(), db, username, "$2a$04$placeholder", domain.Profile{
		FullName: username,
		AboutMe:  domain.DefaultAboutMe,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return u
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
