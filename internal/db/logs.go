package db

import (
	"fmt"
	"time"
)

// ActivityLogRepository covers the append-only audit tables: ad watch logs
// and key claim logs. Rows are written inside the awarding transaction and
// never updated or deleted.
type ActivityLogRepository struct {
	db *DB
}

func NewActivityLogRepository(db *DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) AppendWatch(q Execer, userID int64, viewOrdinal int, points int64, ip, userAgent string, now time.Time) error {
	id, err := GenerateID("awl")
	if err != nil {
		return fmt.Errorf("generating watch log ID: %w", err)
	}

	_, err = q.Exec(
		`INSERT INTO ad_watch_logs (id, user_id, view_ordinal, points, ip, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, viewOrdinal, points, ip, userAgent, now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("appending watch log: %w", err)
	}

	return nil
}

// DistinctWatchUsersByIP counts how many different users have verified from
// the given IP since the cutoff. This backs the collusion signal.
func (r *ActivityLogRepository) DistinctWatchUsersByIP(q Execer, ip string, since time.Time) (int, error) {
	var count int
	err := q.QueryRow(
		`SELECT COUNT(DISTINCT user_id) FROM ad_watch_logs WHERE ip = ? AND created_at >= ?`,
		ip, since.UTC(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting watch users by ip: %w", err)
	}
	return count, nil
}

func (r *ActivityLogRepository) AppendClaim(q Execer, userID int64, keyType, keyValue string, points int64, now time.Time) error {
	id, err := GenerateID("kcl")
	if err != nil {
		return fmt.Errorf("generating claim log ID: %w", err)
	}

	_, err = q.Exec(
		`INSERT INTO key_claim_logs (id, user_id, key_type, key_value, points, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, keyType, keyValue, points, now.UTC(),
	)
	if err != nil {
		return fmt.Errorf("appending claim log: %w", err)
	}

	return nil
}
