package rewards

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"pointsbot/internal/db"
	"pointsbot/internal/models"
)

const (
	keyLength   = 12
	keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// RotateKeys deactivates any current pair, generates a fresh one and resets
// every user's per-epoch claim bookkeeping. One transaction: readers never
// see a new pair next to stale claim flags. Safe to call mid-epoch as an
// admin override; the newest active pair wins.
func (s *Service) RotateKeys() (*models.DailyKeyPair, error) {
	now := time.Now().UTC()

	key1, err := generateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key1: %w", err)
	}
	key2, err := generateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key2: %w", err)
	}

	var pair *models.DailyKeyPair
	err = s.db.Transact(func(tx *sql.Tx) error {
		if err := s.keys.DeactivateAll(tx); err != nil {
			return err
		}
		p, err := s.keys.Insert(tx, key1, key2, now)
		if err != nil {
			return err
		}
		if err := s.users.ResetAllClaims(tx); err != nil {
			return err
		}
		pair = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rotating daily keys: %w", err)
	}

	return pair, nil
}

// CurrentKeys returns the active pair generated within the current epoch.
// A pair left over from a previous epoch does not count.
func (s *Service) CurrentKeys() (*models.DailyKeyPair, error) {
	now := time.Now().UTC()

	pair, err := s.keys.FindActive(s.db)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrKeysNotReady
	}
	if err != nil {
		return nil, err
	}
	if pair.CreatedAt.Before(s.clock.EpochStart(now)) {
		return nil, ErrKeysNotReady
	}

	return pair, nil
}

// SetKeyLink attaches a display link to the active pair. which is "key1" or
// "key2". No-op (reported as ErrKeysNotReady) without an active pair.
func (s *Service) SetKeyLink(which, url string) error {
	if which != "key1" && which != "key2" {
		return fmt.Errorf("unknown key slot %q", which)
	}

	return s.db.Transact(func(tx *sql.Tx) error {
		pair, err := s.keys.FindActive(tx)
		if errors.Is(err, db.ErrNotFound) {
			return ErrKeysNotReady
		}
		if err != nil {
			return err
		}
		return s.keys.SetLink(tx, pair.ID, which, url)
	})
}

// Readiness reports whether the key feature can be shown to users: an active
// current-epoch pair must exist and both links must be set. The caller
// decides what to do with a not-ready answer.
func (s *Service) Readiness() (bool, string) {
	pair, err := s.CurrentKeys()
	if err != nil {
		return false, "no active key pair for the current epoch"
	}
	if pair.Key1Link == nil || *pair.Key1Link == "" {
		return false, "key1 link is not set"
	}
	if pair.Key2Link == nil || *pair.Key2Link == "" {
		return false, "key2 link is not set"
	}
	return true, ""
}

func generateKey() (string, error) {
	buf := make([]byte, keyLength)
	max := big.NewInt(int64(len(keyAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating random key: %w", err)
		}
		buf[i] = keyAlphabet[n.Int64()]
	}
	return string(buf), nil
}
