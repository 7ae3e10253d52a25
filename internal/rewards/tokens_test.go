package rewards

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"pointsbot/internal/db"
)

func TestVerifyUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.VerifyAdToken("no-such-token", "1.2.3.4", "test-agent")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("VerifyAdToken() error = %v, want ErrTokenNotFound", err)
	}
}

func TestIssueProducesUniqueTokens(t *testing.T) {
	svc, _ := newTestService(t)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		token, err := svc.IssueAdToken(100, "alice")
		if err != nil {
			t.Fatalf("IssueAdToken() error = %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token issued: %q", token)
		}
		seen[token] = true
	}
}

func TestVerifyAwardsScheduleAndDailyLimit(t *testing.T) {
	svc, _ := newTestService(t)
	const userID = int64(100)

	verify := func() (*VerifyResult, error) {
		token, err := svc.IssueAdToken(userID, "alice")
		if err != nil {
			t.Fatalf("IssueAdToken() error = %v", err)
		}
		return svc.VerifyAdToken(token, "1.2.3.4", "test-agent")
	}

	first, err := verify()
	if err != nil {
		t.Fatalf("first verify error = %v", err)
	}
	if first.Points != 10 || first.ViewOrdinal != 1 {
		t.Fatalf("first verify = %d points, ordinal %d, want 10 and 1", first.Points, first.ViewOrdinal)
	}

	second, err := verify()
	if err != nil {
		t.Fatalf("second verify error = %v", err)
	}
	if second.Points != 6 || second.ViewOrdinal != 2 {
		t.Fatalf("second verify = %d points, ordinal %d, want 6 and 2", second.Points, second.ViewOrdinal)
	}

	third, err := verify()
	if err != nil {
		t.Fatalf("third verify error = %v", err)
	}
	if third.Points < 3 || third.Points > 10 {
		t.Fatalf("third verify = %d points, want a value in [3,10]", third.Points)
	}

	if _, err := verify(); !errors.Is(err, ErrDailyLimit) {
		t.Fatalf("fourth verify error = %v, want ErrDailyLimit", err)
	}

	want := 10 + 6 + third.Points
	if got := balance(t, svc, userID); got != want {
		t.Fatalf("balance = %d, want %d", got, want)
	}
}

func TestVerifySameTokenTwice(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.IssueAdToken(100, "alice")
	if err != nil {
		t.Fatalf("IssueAdToken() error = %v", err)
	}

	if _, err := svc.VerifyAdToken(token, "1.2.3.4", "test-agent"); err != nil {
		t.Fatalf("first verify error = %v", err)
	}
	if _, err := svc.VerifyAdToken(token, "1.2.3.4", "test-agent"); !errors.Is(err, ErrTokenUsed) {
		t.Fatalf("second verify error = %v, want ErrTokenUsed", err)
	}

	if got := balance(t, svc, 100); got != 10 {
		t.Fatalf("balance = %d, want 10 (no double award)", got)
	}
}

func TestVerifyTokenExpiry(t *testing.T) {
	svc, database := newTestService(t)

	// 301 seconds old: expired.
	token, err := svc.IssueAdToken(100, "alice")
	if err != nil {
		t.Fatalf("IssueAdToken() error = %v", err)
	}
	backdate(t, database, token, 301*time.Second)

	if _, err := svc.VerifyAdToken(token, "1.2.3.4", "test-agent"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("verify error = %v, want ErrTokenExpired", err)
	}

	// 299 seconds old: still valid.
	token, err = svc.IssueAdToken(100, "alice")
	if err != nil {
		t.Fatalf("IssueAdToken() error = %v", err)
	}
	backdate(t, database, token, 299*time.Second)

	if _, err := svc.VerifyAdToken(token, "1.2.3.4", "test-agent"); err != nil {
		t.Fatalf("verify of 299s-old token error = %v", err)
	}
}

func TestStaleViewCountReadsAsZero(t *testing.T) {
	svc, database := newTestService(t)
	const userID = int64(100)

	token, err := svc.IssueAdToken(userID, "alice")
	if err != nil {
		t.Fatalf("IssueAdToken() error = %v", err)
	}

	// At the limit, but the marker predates the current epoch.
	stale := svc.clock.EpochStart(time.Now().UTC()).Add(-time.Minute)
	if _, err := database.Exec(
		`UPDATE users SET ad_view_count = 3, ad_view_at = ? WHERE id = ?`,
		stale.UTC(), userID,
	); err != nil {
		t.Fatalf("backdating view marker: %v", err)
	}

	res, err := svc.VerifyAdToken(token, "1.2.3.4", "test-agent")
	if err != nil {
		t.Fatalf("verify error = %v", err)
	}
	if res.ViewOrdinal != 1 || res.Points != 10 {
		t.Fatalf("verify after stale marker = ordinal %d, %d points, want 1 and 10", res.ViewOrdinal, res.Points)
	}
}

func TestCollusionSignal(t *testing.T) {
	svc, _ := newTestService(t)
	const ip = "9.9.9.9"

	for i := 0; i < 2; i++ {
		token, err := svc.IssueAdToken(int64(200+i), fmt.Sprintf("user%d", i))
		if err != nil {
			t.Fatalf("IssueAdToken() error = %v", err)
		}
		if _, err := svc.VerifyAdToken(token, ip, "test-agent"); err != nil {
			t.Fatalf("verify error = %v", err)
		}
	}

	colluding, err := svc.IsColludingIP(ip)
	if err != nil {
		t.Fatalf("IsColludingIP() error = %v", err)
	}
	if colluding {
		t.Fatal("two distinct users should not trip the collusion signal")
	}

	token, err := svc.IssueAdToken(300, "user3")
	if err != nil {
		t.Fatalf("IssueAdToken() error = %v", err)
	}
	res, err := svc.VerifyAdToken(token, ip, "test-agent")
	if err != nil {
		t.Fatalf("verify error = %v", err)
	}
	if !res.ColludingIP {
		t.Fatal("third distinct user should raise the collusion flag on the result")
	}

	colluding, err = svc.IsColludingIP(ip)
	if err != nil {
		t.Fatalf("IsColludingIP() error = %v", err)
	}
	if !colluding {
		t.Fatal("three distinct users from one IP should trip the collusion signal")
	}
}

func backdate(t *testing.T, database *db.DB, token string, age time.Duration) {
	t.Helper()

	if _, err := database.Exec(
		`UPDATE ad_tokens SET issued_at = ? WHERE token = ?`,
		time.Now().UTC().Add(-age), token,
	); err != nil {
		t.Fatalf("backdating token: %v", err)
	}
}
