package application

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/terradex/config"
)

// Scheduler re-runs ingestion on a fixed interval. Each run is independent
// and idempotent, so cancellation simply stops scheduling the next run; an
// in-flight run is never interrupted mid-repository.
type Scheduler struct {
	service *IngestService
}

// NewScheduler creates a scheduler driving the given service.
func NewScheduler(service *IngestService) *Scheduler {
	return &Scheduler{service: service}
}

// Run ingests immediately, then again every cfg.Refresh.Interval until the
// context is cancelled. Run errors are logged; the schedule keeps going.
// Cancellation is the intended way to stop watching, so it is a clean
// shutdown, not an error.
func (s *Scheduler) Run(ctx context.Context, cfg *config.Config) error {
	interval := cfg.Refresh.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	s.runOnce(ctx, cfg)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Infof("[schedule] stopping, no further runs will be scheduled")
			return nil
		case <-ticker.C:
			s.runOnce(ctx, cfg)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, cfg *config.Config) {
	started := time.Now()
	summaries, err := s.service.Ingest(ctx, cfg)
	if err != nil {
		logger.Errorf("[schedule] ingestion run failed: %v", err)
		return
	}
	logger.Infof("[schedule] ingestion run finished: %d modules in %s", len(summaries), time.Since(started).Round(time.Second))
}
