package models

import "time"

// User is the unified points/claim record, keyed by the Telegram user ID.
type User struct {
	ID          int64      `json:"id"`
	Username    string     `json:"username,omitempty"`
	Balance     int64      `json:"balance"`
	TotalEarned int64      `json:"totalEarned"`
	CheckinAt   *time.Time `json:"-"`

	// Ad-view bookkeeping. AdViewCount is meaningful only while AdViewAt
	// falls within the current epoch; stale values read as zero.
	AdViewCount int        `json:"-"`
	AdViewAt    *time.Time `json:"-"`

	// Daily-key bookkeeping, same lazy-reset rule keyed on KeyClaimAt.
	KeyClaimCount int        `json:"-"`
	KeyClaimAt    *time.Time `json:"-"`
	ClaimedKey1   bool       `json:"-"`
	ClaimedKey2   bool       `json:"-"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}
