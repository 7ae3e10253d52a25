package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pointsbot/internal/models"
)

type AdTokenRepository struct {
	db *DB
}

func NewAdTokenRepository(db *DB) *AdTokenRepository {
	return &AdTokenRepository{db: db}
}

func (r *AdTokenRepository) Create(q Execer, userID int64, token string, issuedAt time.Time) (*models.AdToken, error) {
	id, err := GenerateID("adt")
	if err != nil {
		return nil, fmt.Errorf("generating ad token ID: %w", err)
	}

	_, err = q.Exec(
		`INSERT INTO ad_tokens (id, token, user_id, issued_at) VALUES (?, ?, ?, ?)`,
		id, token, userID, issuedAt.UTC(),
	)
	if err != nil {
		if IsUniqueConstraintError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating ad token: %w", err)
	}

	return &models.AdToken{
		ID:       id,
		Token:    token,
		UserID:   userID,
		IssuedAt: issuedAt,
	}, nil
}

func (r *AdTokenRepository) FindByToken(q Execer, token string) (*models.AdToken, error) {
	var t models.AdToken
	var usedAt sql.NullTime
	var ip, userAgent sql.NullString

	err := q.QueryRow(
		`SELECT id, token, user_id, issued_at, used_at, ip, user_agent FROM ad_tokens WHERE token = ?`,
		token,
	).Scan(&t.ID, &t.Token, &t.UserID, &t.IssuedAt, &usedAt, &ip, &userAgent)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying ad token: %w", err)
	}

	t.UsedAt = nullTimeToPtr(usedAt)
	t.IP = ip.String
	t.UserAgent = userAgent.String

	return &t, nil
}

// ConsumeIfUnused atomically marks a token used only if it hasn't been used
// yet. A false return means another call won the race.
func (r *AdTokenRepository) ConsumeIfUnused(q Execer, id string, usedAt time.Time, ip, userAgent string) (bool, error) {
	result, err := q.Exec(
		`UPDATE ad_tokens SET used_at = ?, ip = ?, user_agent = ? WHERE id = ? AND used_at IS NULL`,
		usedAt.UTC(), ip, userAgent, id,
	)
	if err != nil {
		return false, fmt.Errorf("consuming ad token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}

	return rows > 0, nil
}

// DeleteExpiredUnused removes unused tokens issued before the cutoff. Used
// rows stay; they back the watch history.
func (r *AdTokenRepository) DeleteExpiredUnused(issuedBefore time.Time) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM ad_tokens WHERE used_at IS NULL AND issued_at < ?`,
		issuedBefore.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting expired ad tokens: %w", err)
	}

	return result.RowsAffected()
}
