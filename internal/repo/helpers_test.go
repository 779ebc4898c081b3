package repo

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-direct-chat/internal/domain"
)

// newRepoDB opens a migrated SQLite database in a per-test temp dir.
func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u, err := CreateUserWithProfile(context.Background(), db, username, "$2a$04$hash", domain.Profile{
		FullName: username + " full",
		AboutMe:  domain.DefaultAboutMe,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}
