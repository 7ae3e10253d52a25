package models

import "time"

const (
	LedgerActionEarn  = "earn"
	LedgerActionSpend = "spend"
)

// LedgerEntry is one immutable row of a user's points history.
type LedgerEntry struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"userId"`
	Action      string    `json:"action"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
