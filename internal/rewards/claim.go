package rewards

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pointsbot/internal/db"
)

// ClaimResult reports a successful daily-key redemption.
type ClaimResult struct {
	Points  int64
	KeyType string
	Message string
}

// ClaimKey redeems a submitted key against the active pair. Matching is
// exact; the limiter is once per key per epoch, so key1 and key2 are
// independently claimable within one epoch.
func (s *Service) ClaimKey(userID int64, username, submittedKey string) (*ClaimResult, error) {
	now := time.Now().UTC()
	var res ClaimResult

	err := s.db.Transact(func(tx *sql.Tx) error {
		pair, err := s.keys.FindActive(tx)
		if errors.Is(err, db.ErrNotFound) {
			return ErrKeysNotReady
		}
		if err != nil {
			return err
		}
		if pair.CreatedAt.Before(s.clock.EpochStart(now)) {
			return ErrKeysNotReady
		}

		var keyType string
		var points int64
		switch submittedKey {
		case pair.Key1:
			keyType, points = "key1", key1Points
		case pair.Key2:
			keyType, points = "key2", key2Points
		default:
			return ErrInvalidKey
		}

		if err := s.users.Upsert(tx, userID, username); err != nil {
			return err
		}
		u, err := s.users.Find(tx, userID)
		if err != nil {
			return err
		}

		// Lazy reset: stored flags only count if the marker is from the
		// current epoch.
		fresh := s.clock.InCurrentEpoch(u.KeyClaimAt, now)
		claimedKey1, claimedKey2 := false, false
		count := 0
		if fresh {
			claimedKey1, claimedKey2 = u.ClaimedKey1, u.ClaimedKey2
			count = u.KeyClaimCount
		}

		if keyType == "key1" {
			if claimedKey1 {
				return ErrKey1AlreadyClaimed
			}
			claimedKey1 = true
		} else {
			if claimedKey2 {
				return ErrKey2AlreadyClaimed
			}
			claimedKey2 = true
		}

		if err := s.users.RecordKeyClaim(tx, userID, claimedKey1, claimedKey2, count+1, now); err != nil {
			return err
		}
		if err := s.ledger.Credit(tx, userID, points, fmt.Sprintf("daily key reward (%s)", keyType), now); err != nil {
			return err
		}
		if err := s.logs.AppendClaim(tx, userID, keyType, submittedKey, points, now); err != nil {
			return err
		}

		res = ClaimResult{
			Points:  points,
			KeyType: keyType,
			Message: fmt.Sprintf("Key accepted, %d points added.", points),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}
