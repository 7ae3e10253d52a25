package db

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultCleanupInterval = 1 * time.Hour
)

// CleanupService periodically deletes expired, unused ad tokens. Audit tables
// (watch logs, claim logs, points ledger) are never touched.
type CleanupService struct {
	adTokens *AdTokenRepository
	tokenTTL time.Duration
	interval time.Duration
}

func NewCleanupService(adTokens *AdTokenRepository, tokenTTL time.Duration) *CleanupService {
	return &CleanupService{
		adTokens: adTokens,
		tokenTTL: tokenTTL,
		interval: DefaultCleanupInterval,
	}
}

func (s *CleanupService) Start(ctx context.Context) {
	slog.Info("starting token cleanup service", "component", "cleanup", "interval", s.interval)

	s.runCleanup()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping token cleanup service", "component", "cleanup")
			return
		case <-ticker.C:
			s.runCleanup()
		}
	}
}

func (s *CleanupService) runCleanup() {
	deleted, err := s.adTokens.DeleteExpiredUnused(time.Now().Add(-s.tokenTTL))
	if err != nil {
		slog.Error("error deleting expired ad tokens", "component", "cleanup", "error", err)
	} else if deleted > 0 {
		slog.Info("deleted expired ad tokens", "component", "cleanup", "count", deleted)
	}
}
