package rewards

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"pointsbot/internal/db"
)

// VerifyResult reports a successful ad-token verification.
type VerifyResult struct {
	Points      int64
	ViewOrdinal int
	Message     string
	ColludingIP bool
}

// IssueAdToken creates and persists a fresh unused token for the user. The
// token is unique across all time: a hash over the user, the issue instant
// and a random nonce.
func (s *Service) IssueAdToken(userID int64, username string) (string, error) {
	now := time.Now().UTC()
	token := deriveToken(userID, now)

	var issued string
	err := s.db.Transact(func(tx *sql.Tx) error {
		if err := s.users.Upsert(tx, userID, username); err != nil {
			return err
		}
		t, err := s.tokens.Create(tx, userID, token, now)
		if err != nil {
			return err
		}
		issued = t.Token
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("issuing ad token: %w", err)
	}

	return issued, nil
}

// VerifyAdToken consumes a token and awards the epoch-ordinal reward. The
// whole check-and-mutate sequence runs in one transaction: a token is never
// awarded twice and a fourth view in an epoch is never credited.
func (s *Service) VerifyAdToken(token, ip, userAgent string) (*VerifyResult, error) {
	now := time.Now().UTC()
	var res VerifyResult

	err := s.db.Transact(func(tx *sql.Tx) error {
		t, err := s.tokens.FindByToken(tx, token)
		if errors.Is(err, db.ErrNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return err
		}
		if t.Used() {
			return ErrTokenUsed
		}
		if now.Sub(t.IssuedAt) > s.tokenTTL {
			return ErrTokenExpired
		}

		u, err := s.users.Find(tx, t.UserID)
		if err != nil {
			return err
		}

		count := 0
		if s.clock.InCurrentEpoch(u.AdViewAt, now) {
			count = u.AdViewCount
		}
		if count >= s.dailyViewLimit {
			return ErrDailyLimit
		}

		ordinal := count + 1
		points := viewReward(ordinal)

		consumed, err := s.tokens.ConsumeIfUnused(tx, t.ID, now, ip, userAgent)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrTokenUsed
		}

		if err := s.users.RecordAdView(tx, u.ID, ordinal, now); err != nil {
			return err
		}
		if err := s.ledger.Credit(tx, u.ID, points, fmt.Sprintf("ad view reward (#%d)", ordinal), now); err != nil {
			return err
		}
		if err := s.logs.AppendWatch(tx, u.ID, ordinal, points, ip, userAgent, now); err != nil {
			return err
		}

		res = VerifyResult{
			Points:      points,
			ViewOrdinal: ordinal,
			Message:     fmt.Sprintf("Ad view verified, %d points added.", points),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ip != "" {
		colluding, err := s.IsColludingIP(ip)
		if err == nil {
			res.ColludingIP = colluding
		}
		// The signal is advisory; a failed lookup never fails the verify.
	}

	return &res, nil
}

// IsColludingIP reports whether CollusionThreshold or more distinct users
// have verified tokens from this IP within the current calendar day.
func (s *Service) IsColludingIP(ip string) (bool, error) {
	now := time.Now().UTC()
	count, err := s.logs.DistinctWatchUsersByIP(s.db, ip, s.clock.DayStart(now))
	if err != nil {
		return false, fmt.Errorf("checking colluding ip: %w", err)
	}
	return count >= CollusionThreshold, nil
}

func viewReward(ordinal int) int64 {
	switch ordinal {
	case 1:
		return firstViewPoints
	case 2:
		return secondViewPoints
	default:
		return int64(rand.IntN(thirdViewMax-thirdViewMin+1) + thirdViewMin)
	}
}

func deriveToken(userID int64, issuedAt time.Time) string {
	h := sha256.Sum256(fmt.Appendf(nil, "%d:%d:%s", userID, issuedAt.UnixNano(), uuid.NewString()))
	return hex.EncodeToString(h[:])
}
