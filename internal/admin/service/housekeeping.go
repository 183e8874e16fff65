package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/godview/internal/admin/store"
)

// impersonationRetention keeps expired, unused impersonation tokens around
// for a day so late consume attempts still classify as expired. Used tokens
// are never purged.
const impersonationRetention = 24 * time.Hour

// HousekeepingService periodically deletes dead sessions and impersonation
// tokens to keep those tables from growing without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", slog.Duration("interval", s.Interval))
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// cleanup runs each purge independently; one failing does not stop the
// others. It returns the number of purges that succeeded.
func (s *HousekeepingService) cleanup(ctx context.Context) int {
	s.Logger.Debug("starting housekeeping cleanup")
	now := clock(s.Now)
	succeeded := 0

	if n, err := s.Store.Sessions().DeleteStaleSessions(ctx, now); err != nil {
		s.Logger.Error("failed to delete stale sessions", slog.Any("error", err))
	} else {
		s.Logger.Debug("deleted stale sessions", slog.Int64("count", n))
		succeeded++
	}

	cutoff := now.Add(-impersonationRetention)
	if n, err := s.Store.ImpersonationTokens().DeleteStaleImpersonationTokens(ctx, cutoff); err != nil {
		s.Logger.Error("failed to delete stale impersonation tokens", slog.Any("error", err))
	} else {
		s.Logger.Debug("deleted stale impersonation tokens", slog.Int64("count", n))
		succeeded++
	}

	s.Logger.Info("housekeeping cleanup completed", slog.Int("successful_cleanups", succeeded))
	return succeeded
}
