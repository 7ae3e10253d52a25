package rewards

import (
	"database/sql"
	"fmt"
	"time"

	"pointsbot/internal/models"
)

// CheckinResult reports a successful daily check-in.
type CheckinResult struct {
	Points  int64
	Message string
}

// CheckIn awards the fixed check-in reward once per epoch, using the same
// lazy marker rule as every other daily limit.
func (s *Service) CheckIn(userID int64, username string) (*CheckinResult, error) {
	now := time.Now().UTC()
	var res CheckinResult

	err := s.db.Transact(func(tx *sql.Tx) error {
		if err := s.users.Upsert(tx, userID, username); err != nil {
			return err
		}
		u, err := s.users.Find(tx, userID)
		if err != nil {
			return err
		}

		if s.clock.InCurrentEpoch(u.CheckinAt, now) {
			return ErrAlreadyCheckedIn
		}

		if err := s.users.RecordCheckin(tx, userID, now); err != nil {
			return err
		}
		if err := s.ledger.Credit(tx, userID, s.checkinPoints, "daily check-in", now); err != nil {
			return err
		}

		res = CheckinResult{
			Points:  s.checkinPoints,
			Message: fmt.Sprintf("Checked in, %d points added.", s.checkinPoints),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// GetUser upserts and returns the user's current record.
func (s *Service) GetUser(userID int64, username string) (*models.User, error) {
	var u *models.User
	err := s.db.Transact(func(tx *sql.Tx) error {
		if err := s.users.Upsert(tx, userID, username); err != nil {
			return err
		}
		found, err := s.users.Find(tx, userID)
		if err != nil {
			return err
		}
		u = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Credit adds points outside the built-in flows (admin adjustments).
func (s *Service) Credit(userID, amount int64, description string) error {
	now := time.Now().UTC()
	return s.db.Transact(func(tx *sql.Tx) error {
		return s.ledger.Credit(tx, userID, amount, description, now)
	})
}

// Debit spends points, clamping the balance at zero. Returns the amount
// actually deducted.
func (s *Service) Debit(userID, amount int64, description string) (int64, error) {
	now := time.Now().UTC()
	var applied int64
	err := s.db.Transact(func(tx *sql.Tx) error {
		a, err := s.ledger.Debit(tx, userID, amount, description, now)
		if err != nil {
			return err
		}
		applied = a
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// History returns the user's ledger entries, newest first.
func (s *Service) History(userID int64, limit int) ([]*models.LedgerEntry, error) {
	return s.ledger.History(s.db, userID, limit)
}
