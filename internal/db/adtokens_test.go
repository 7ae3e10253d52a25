package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

func TestConsumeIfUnusedIsSingleShot(t *testing.T) {
	database := openTestDB(t)
	users := NewUserRepository(database)
	tokens := NewAdTokenRepository(database)

	if err := users.Upsert(database, 1, "alice"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	created, err := tokens.Create(database, 1, "tok-abc", time.Now().UTC())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	now := time.Now().UTC()
	first, err := tokens.ConsumeIfUnused(database, created.ID, now, "1.2.3.4", "agent")
	if err != nil {
		t.Fatalf("first ConsumeIfUnused() error = %v", err)
	}
	if !first {
		t.Fatal("first consume should succeed")
	}

	second, err := tokens.ConsumeIfUnused(database, created.ID, now, "1.2.3.4", "agent")
	if err != nil {
		t.Fatalf("second ConsumeIfUnused() error = %v", err)
	}
	if second {
		t.Fatal("second consume should lose the race")
	}

	stored, err := tokens.FindByToken(database, "tok-abc")
	if err != nil {
		t.Fatalf("FindByToken() error = %v", err)
	}
	if !stored.Used() || stored.IP != "1.2.3.4" {
		t.Fatalf("stored token = %+v, want used with recorded ip", stored)
	}
}

func TestCreateRejectsDuplicateToken(t *testing.T) {
	database := openTestDB(t)
	users := NewUserRepository(database)
	tokens := NewAdTokenRepository(database)

	if err := users.Upsert(database, 1, "alice"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if _, err := tokens.Create(database, 1, "tok-dup", time.Now().UTC()); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	if _, err := tokens.Create(database, 1, "tok-dup", time.Now().UTC()); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second Create() error = %v, want ErrDuplicate", err)
	}
}

func TestDeleteExpiredUnusedKeepsUsedRows(t *testing.T) {
	database := openTestDB(t)
	users := NewUserRepository(database)
	tokens := NewAdTokenRepository(database)

	if err := users.Upsert(database, 1, "alice"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	old := time.Now().UTC().Add(-time.Hour)
	used, err := tokens.Create(database, 1, "tok-used", old)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := tokens.ConsumeIfUnused(database, used.ID, old.Add(time.Minute), "1.2.3.4", "agent"); err != nil {
		t.Fatalf("ConsumeIfUnused() error = %v", err)
	}
	if _, err := tokens.Create(database, 1, "tok-stale", old); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	deleted, err := tokens.DeleteExpiredUnused(time.Now().UTC().Add(-5 * time.Minute))
	if err != nil {
		t.Fatalf("DeleteExpiredUnused() error = %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}

	if _, err := tokens.FindByToken(database, "tok-used"); err != nil {
		t.Fatalf("used token should survive cleanup, got %v", err)
	}
	if _, err := tokens.FindByToken(database, "tok-stale"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stale token lookup error = %v, want ErrNotFound", err)
	}
}

func TestUpsertKeepsUsernameWhenBlank(t *testing.T) {
	database := openTestDB(t)
	users := NewUserRepository(database)

	if err := users.Upsert(database, 1, "alice"); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := users.Upsert(database, 1, ""); err != nil {
		t.Fatalf("blank Upsert() error = %v", err)
	}

	u, err := users.Find(database, 1)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("username = %q, want %q", u.Username, "alice")
	}
}
