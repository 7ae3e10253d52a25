// Package rewards implements the point economy's core protocols: single-use
// ad-view tokens, the rotating daily key pair, per-epoch claim limits and the
// append-only points ledger.
package rewards

import (
	"time"

	"pointsbot/internal/db"
	"pointsbot/internal/epoch"
)

const (
	// Ad-view reward schedule, keyed by the ordinal view within the epoch.
	firstViewPoints  = 10
	secondViewPoints = 6
	thirdViewMin     = 3
	thirdViewMax     = 10

	// Daily key rewards.
	key1Points = 8
	key2Points = 6

	// CollusionThreshold is the number of distinct users verifying from one
	// IP in a calendar day at which the collusion signal trips.
	CollusionThreshold = 3

	DefaultTokenTTL       = 300 * time.Second
	DefaultDailyViewLimit = 3
	DefaultCheckinPoints  = 5
)

type Service struct {
	db       *db.DB
	users    *db.UserRepository
	tokens   *db.AdTokenRepository
	keys     *db.DailyKeyRepository
	ledger   *db.LedgerRepository
	logs     *db.ActivityLogRepository
	clock    epoch.Clock
	tokenTTL time.Duration

	dailyViewLimit int
	checkinPoints  int64
}

type Options struct {
	TokenTTL       time.Duration
	DailyViewLimit int
	CheckinPoints  int64
}

func NewService(database *db.DB, clock epoch.Clock, opts Options) *Service {
	if opts.TokenTTL == 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.DailyViewLimit == 0 {
		opts.DailyViewLimit = DefaultDailyViewLimit
	}
	if opts.CheckinPoints == 0 {
		opts.CheckinPoints = DefaultCheckinPoints
	}

	return &Service{
		db:             database,
		users:          db.NewUserRepository(database),
		tokens:         db.NewAdTokenRepository(database),
		keys:           db.NewDailyKeyRepository(database),
		ledger:         db.NewLedgerRepository(database),
		logs:           db.NewActivityLogRepository(database),
		clock:          clock,
		tokenTTL:       opts.TokenTTL,
		dailyViewLimit: opts.DailyViewLimit,
		checkinPoints:  opts.CheckinPoints,
	}
}

// Clock exposes the epoch clock so callers can report the next reset instant.
func (s *Service) Clock() epoch.Clock {
	return s.clock
}
