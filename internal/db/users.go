package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pointsbot/internal/models"
)

const userColumns = `id, username, balance, total_earned, checkin_at,
	ad_view_count, ad_view_at, key_claim_count, key_claim_at,
	claimed_key1, claimed_key2, created_at, updated_at`

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates the user on first contact and refreshes the username on
// later ones. Points and claim bookkeeping are never touched here.
func (r *UserRepository) Upsert(q Execer, id int64, username string) error {
	now := time.Now().UTC()

	// An empty username never clobbers a stored one.
	_, err := q.Exec(
		`INSERT INTO users (id, username, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = CASE WHEN excluded.username != '' THEN excluded.username ELSE users.username END,
			updated_at = ?`,
		id, username, now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}

	return nil
}

func (r *UserRepository) Find(q Execer, id int64) (*models.User, error) {
	var u models.User
	var checkinAt, adViewAt, keyClaimAt, updatedAt sql.NullTime

	err := q.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id).Scan(
		&u.ID,
		&u.Username,
		&u.Balance,
		&u.TotalEarned,
		&checkinAt,
		&u.AdViewCount,
		&adViewAt,
		&u.KeyClaimCount,
		&keyClaimAt,
		&u.ClaimedKey1,
		&u.ClaimedKey2,
		&u.CreatedAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	u.CheckinAt = nullTimeToPtr(checkinAt)
	u.AdViewAt = nullTimeToPtr(adViewAt)
	u.KeyClaimAt = nullTimeToPtr(keyClaimAt)
	u.UpdatedAt = nullTimeToPtr(updatedAt)

	return &u, nil
}

// RecordAdView stores the user's new current-epoch view count and marker.
func (r *UserRepository) RecordAdView(q Execer, id int64, count int, now time.Time) error {
	result, err := q.Exec(
		`UPDATE users SET ad_view_count = ?, ad_view_at = ?, updated_at = ? WHERE id = ?`,
		count, now.UTC(), now.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("recording ad view: %w", err)
	}
	return checkRowsAffected(result)
}

// RecordKeyClaim stores both claimed flags, the claim count and the claim
// marker in one statement so a partial claim state is never observable.
func (r *UserRepository) RecordKeyClaim(q Execer, id int64, claimedKey1, claimedKey2 bool, count int, now time.Time) error {
	result, err := q.Exec(
		`UPDATE users SET claimed_key1 = ?, claimed_key2 = ?, key_claim_count = ?, key_claim_at = ?, updated_at = ?
		WHERE id = ?`,
		claimedKey1, claimedKey2, count, now.UTC(), now.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("recording key claim: %w", err)
	}
	return checkRowsAffected(result)
}

func (r *UserRepository) RecordCheckin(q Execer, id int64, now time.Time) error {
	result, err := q.Exec(
		`UPDATE users SET checkin_at = ?, updated_at = ? WHERE id = ?`,
		now.UTC(), now.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("recording check-in: %w", err)
	}
	return checkRowsAffected(result)
}

// ResetAllClaims zeroes every user's per-epoch key-claim bookkeeping. Runs as
// part of key rotation, inside the rotation's transaction.
func (r *UserRepository) ResetAllClaims(q Execer) error {
	_, err := q.Exec(
		`UPDATE users SET claimed_key1 = 0, claimed_key2 = 0, key_claim_count = 0, key_claim_at = NULL`,
	)
	if err != nil {
		return fmt.Errorf("resetting claim state: %w", err)
	}
	return nil
}
