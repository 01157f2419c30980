package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/portal/internal/portal/store"
)

// HousekeepingService periodically prunes login audit records older than the
// retention window so the table does not grow without bound.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration

	now    func() time.Time
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service. Non-positive
// durations fall back to an hourly run and a 90 day retention.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop blocks until the worker has finished any in-progress cleanup.
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
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	if _, err := s.PruneLoginEvents(context.Background()); err != nil {
		s.Logger.Error("failed to prune login events", "error", err)
	}
}

// PruneLoginEvents deletes login events older than the retention window and
// returns how many were removed.
func (s *HousekeepingService) PruneLoginEvents(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.Retention)
	n, err := s.Store.LoginEvents().DeleteLoginEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.Logger.Info("housekeeping cleanup completed", "login_events_deleted", n, "cutoff", cutoff)
	return n, nil
}
