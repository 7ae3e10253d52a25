package models

import "time"

// DailyKeyPair holds the two secret redemption keys for one key epoch.
// At most one pair is active at a time; keys are immutable once generated,
// links may be attached after the fact.
type DailyKeyPair struct {
	ID        string
	Key1      string
	Key2      string
	Key1Link  *string
	Key2Link  *string
	Active    bool
	CreatedAt time.Time
}
