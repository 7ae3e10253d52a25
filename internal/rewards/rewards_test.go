package rewards

import (
	"path/filepath"
	"testing"
	"time"

	"pointsbot/internal/db"
	"pointsbot/internal/epoch"
)

func newTestService(t *testing.T) (*Service, *db.DB) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	clock := epoch.NewClock(10, time.UTC)
	svc := NewService(database, clock, Options{})

	return svc, database
}

func balance(t *testing.T, svc *Service, userID int64) int64 {
	t.Helper()

	u, err := svc.GetUser(userID, "")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	return u.Balance
}
