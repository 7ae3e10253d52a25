package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pointsbot/internal/models"
)

type DailyKeyRepository struct {
	db *DB
}

func NewDailyKeyRepository(db *DB) *DailyKeyRepository {
	return &DailyKeyRepository{db: db}
}

func (r *DailyKeyRepository) Insert(q Execer, key1, key2 string, createdAt time.Time) (*models.DailyKeyPair, error) {
	id, err := GenerateID("dkp")
	if err != nil {
		return nil, fmt.Errorf("generating key pair ID: %w", err)
	}

	_, err = q.Exec(
		`INSERT INTO daily_keys (id, key1, key2, active, created_at) VALUES (?, ?, ?, 1, ?)`,
		id, key1, key2, createdAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating key pair: %w", err)
	}

	return &models.DailyKeyPair{
		ID:        id,
		Key1:      key1,
		Key2:      key2,
		Active:    true,
		CreatedAt: createdAt,
	}, nil
}

func (r *DailyKeyRepository) DeactivateAll(q Execer) error {
	if _, err := q.Exec(`UPDATE daily_keys SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("deactivating key pairs: %w", err)
	}
	return nil
}

// FindActive returns the most recently created active pair, regardless of
// age. Callers decide whether it is fresh enough for the current epoch.
func (r *DailyKeyRepository) FindActive(q Execer) (*models.DailyKeyPair, error) {
	var p models.DailyKeyPair
	var link1, link2 sql.NullString

	err := q.QueryRow(
		`SELECT id, key1, key2, key1_link, key2_link, active, created_at
		FROM daily_keys WHERE active = 1 ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&p.ID, &p.Key1, &p.Key2, &link1, &link2, &p.Active, &p.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying active key pair: %w", err)
	}

	if link1.Valid {
		p.Key1Link = &link1.String
	}
	if link2.Valid {
		p.Key2Link = &link2.String
	}

	return &p, nil
}

func (r *DailyKeyRepository) SetLink(q Execer, id, column, url string) error {
	var stmt string
	switch column {
	case "key1":
		stmt = `UPDATE daily_keys SET key1_link = ? WHERE id = ?`
	case "key2":
		stmt = `UPDATE daily_keys SET key2_link = ? WHERE id = ?`
	default:
		return fmt.Errorf("unknown key column %q", column)
	}

	result, err := q.Exec(stmt, url, id)
	if err != nil {
		return fmt.Errorf("setting key link: %w", err)
	}
	return checkRowsAffected(result)
}
