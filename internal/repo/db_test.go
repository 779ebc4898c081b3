package repo

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/tbourn/go-direct-chat/internal/domain"
)

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "chat.db")
	if db, err := OpenSQLite(path); err == nil || db != nil {
		t.Fatalf("OpenSQLite(%q) = %v, %v; want error", path, db, err)
	}
	if _, err := Open(DriverSQLite, path); err == nil {
		t.Fatalf("Open(sqlite) should surface the same error")
	}
}

func TestOpenSQLite_ConnectionSettings(t *testing.T) {
	db, err := Open("", filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	pragmas := []struct {
		name string
		want string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"foreign_keys", "1"},
		{"busy_timeout", "5000"},
	}
	for _, p := range pragmas {
		var got string
		if err := db.Raw("PRAGMA " + p.name).Row().Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", p.name, err)
		}
		if strings.ToLower(got) != p.want {
			t.Fatalf("PRAGMA %s = %q; want %q", p.name, got, p.want)
		}
	}
	if n := sqlDB.Stats().MaxOpenConnections; n != 1 {
		t.Fatalf("MaxOpenConnections = %d; want 1", n)
	}
}

func TestAutoMigrate_CreatesChatSchema(t *testing.T) {
	db := newRepoDB(t)
	m := db.Migrator()
	for _, model := range []any{&domain.User{}, &domain.Profile{}, &domain.Chat{}, &domain.Participant{}, &domain.Message{}, &domain.Idempotency{}} {
		if !m.HasTable(model) {
			t.Fatalf("missing table for %T", model)
		}
	}
	// Running it again on an existing schema is a no-op.
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("second AutoMigrate: %v", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	if err == nil || !strings.Contains(err.Error(), `"oracle"`) {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestSQLiteDSN(t *testing.T) {
	cases := []struct {
		path, prefix string
	}{
		{"chat.db", "chat.db?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"},
		{"file:chat.db?mode=rwc", "file:chat.db?mode=rwc&_pragma=journal_mode(WAL)"},
	}
	for _, tc := range cases {
		got := sqliteDSN(tc.path)
		if !strings.HasPrefix(got, tc.prefix) || !strings.HasSuffix(got, "&_pragma=busy_timeout(5000)") {
			t.Fatalf("sqliteDSN(%q) = %q", tc.path, got)
		}
	}
}
