package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/unimatch/unimatch-backend/internal/service"
)

// PrewarmWorker keeps the default-limit analytics report caches warm by
// recomputing them on a fixed interval. It refreshes slightly more often than
// the cache TTL so clients rarely pay the recompute cost.
type PrewarmWorker struct {
	analytics *service.AnalyticsService
	limit     int
	interval  time.Duration
	log       zerolog.Logger
}

func NewPrewarmWorker(analytics *service.AnalyticsService, limit int, cacheTTL time.Duration, log zerolog.Logger) *PrewarmWorker {
	interval := cacheTTL * 2 / 3
	if interval < time.Minute {
		interval = time.Minute
	}
	return &PrewarmWorker{
		analytics: analytics,
		limit:     limit,
		interval:  interval,
		log:       log.With().Str("component", "prewarm_worker").Logger(),
	}
}

// Start runs the refresh loop until ctx is canceled. The first refresh fires
// immediately so the caches are warm at boot.
func (w *PrewarmWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("PrewarmWorker started")

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("PrewarmWorker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *PrewarmWorker) refresh(ctx context.Context) {
	start := time.Now()
	w.analytics.Prewarm(ctx, w.limit)
	w.log.Debug().Dur("elapsed", time.Since(start)).Msg("Report caches refreshed")
}
