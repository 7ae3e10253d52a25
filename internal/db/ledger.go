package db

import (
	"fmt"
	"time"

	"pointsbot/internal/constants"
	"pointsbot/internal/models"
)

type LedgerRepository struct {
	db *DB
}

func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Credit appends an earn row and bumps the cached balance and lifetime total
// in the same statement sequence. Callers wanting atomicity pass a tx.
func (r *LedgerRepository) Credit(q Execer, userID, amount int64, description string, now time.Time) error {
	if err := r.append(q, userID, models.LedgerActionEarn, amount, description, now); err != nil {
		return err
	}

	result, err := q.Exec(
		`UPDATE users SET balance = balance + ?, total_earned = total_earned + ?, updated_at = ? WHERE id = ?`,
		amount, amount, now.UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("crediting balance: %w", err)
	}
	return checkRowsAffected(result)
}

// Debit appends a spend row and lowers the cached balance, clamping at zero.
// Returns the amount actually deducted.
func (r *LedgerRepository) Debit(q Execer, userID, amount int64, description string, now time.Time) (int64, error) {
	var balance int64
	if err := q.QueryRow(`SELECT balance FROM users WHERE id = ?`, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("querying balance: %w", err)
	}

	applied := amount
	if applied > balance {
		applied = balance
	}

	if err := r.append(q, userID, models.LedgerActionSpend, applied, description, now); err != nil {
		return 0, err
	}

	result, err := q.Exec(
		`UPDATE users SET balance = balance - ?, updated_at = ? WHERE id = ?`,
		applied, now.UTC(), userID,
	)
	if err != nil {
		return 0, fmt.Errorf("debiting balance: %w", err)
	}
	if err := checkRowsAffected(result); err != nil {
		return 0, err
	}

	return applied, nil
}

func (r *LedgerRepository) History(q Execer, userID int64, limit int) ([]*models.LedgerEntry, error) {
	if limit <= 0 || limit > constants.HistoryMaxLimit {
		limit = 20
	}

	rows, err := q.Query(
		`SELECT id, user_id, action, amount, description, created_at
		FROM points_ledger WHERE user_id = ? ORDER BY rowid DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.LedgerEntry, 0)
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Amount, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger entries: %w", err)
	}

	return entries, nil
}

func (r *LedgerRepository) append(q Execer, userID int64, action string, amount int64, description string, now time.Time) error {
	id, err := GenerateID("pts")
	if err != nil {
		return fmt.Errorf("generating ledger entry ID: %w", err)
	}

	_, err = q.Exec(
		`INSERT INTO points_ledger (id, user_id, action, amount, description, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, action, amount, description, now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("appending ledger entry: %w", err)
	}

	return nil
}
