// Package epoch computes the daily reward cycle boundary. The cycle rolls
// over at a fixed local hour rather than calendar midnight, and every
// "once per day" rule in the system pivots on that boundary.
package epoch

import "time"

const DefaultResetHour = 10

// Clock derives epoch boundaries from wall-clock time. All methods are pure;
// there is no stored state and no failure mode.
type Clock struct {
	resetHour int
	loc       *time.Location
}

func NewClock(resetHour int, loc *time.Location) Clock {
	if resetHour < 0 || resetHour > 23 {
		resetHour = DefaultResetHour
	}
	if loc == nil {
		loc = time.UTC
	}
	return Clock{resetHour: resetHour, loc: loc}
}

// EpochStart returns the start of the epoch containing now: today's reset
// instant if now has passed it, otherwise yesterday's.
func (c Clock) EpochStart(now time.Time) time.Time {
	local := now.In(c.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), c.resetHour, 0, 0, 0, c.loc)
	if local.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

// NextReset returns the instant the current epoch ends.
func (c Clock) NextReset(now time.Time) time.Time {
	return c.EpochStart(now).AddDate(0, 0, 1)
}

// InCurrentEpoch reports whether a stored action marker belongs to the epoch
// containing now. A nil marker never does. This is the lazy-reset rule:
// nothing rewrites stale rows, freshness is recomputed on every read.
func (c Clock) InCurrentEpoch(marker *time.Time, now time.Time) bool {
	if marker == nil {
		return false
	}
	return !marker.Before(c.EpochStart(now))
}

// DayStart returns local calendar midnight for now. The collusion window is
// a calendar day, distinct from the key epoch.
func (c Clock) DayStart(now time.Time) time.Time {
	local := now.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// Location returns the configured zone.
func (c Clock) Location() *time.Location {
	return c.loc
}
