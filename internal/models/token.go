package models

import "time"

// AdToken is a single-use credential proving a completed ad view.
type AdToken struct {
	ID        string
	Token     string
	UserID    int64
	IssuedAt  time.Time
	UsedAt    *time.Time
	IP        string
	UserAgent string
}

func (t *AdToken) Used() bool {
	return t.UsedAt != nil
}
