package mission

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler runs full syncs on a fixed interval, so the cache is populated
// ahead of render-time reads instead of only healing on misses.
type Scheduler struct {
	svc      *Service
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler. interval <= 0 defaults to one hour.
func NewScheduler(svc *Service, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{svc: svc, interval: interval, logger: logger}
}

// Run syncs once immediately, then on every tick. Blocks until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.syncOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *Scheduler) syncOnce(ctx context.Context) {
	summary, err := s.svc.SyncAll(ctx, "")
	if err != nil {
		s.logger.Error("scheduled sync failed", "error", err)
		return
	}
	s.logger.Info("scheduled sync done",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)
}
