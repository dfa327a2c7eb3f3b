package job

import (
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/logger"
	"InstaCap/internal/service"
	"context"
	log "log/slog"
	"time"
)

type TrendingSnapshotJob struct {
	trendingSvc service.TrendingService
}

func NewTrendingSnapshotJob(trendingSvc service.TrendingService) *TrendingSnapshotJob {
	return &TrendingSnapshotJob{
		trendingSvc: trendingSvc,
	}
}

func (s *TrendingSnapshotJob) Run() {
	ctx := logger.WithTrace(context.Background(), "job-trending")
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	release, ok := acquire(ctx, consts.TrendingSnapshotLock, 5*time.Minute)
	if !ok {
		return
	}
	defer release()

	start := time.Now()
	if err := s.trendingSvc.RefreshSnapshots(ctx); err != nil {
		log.ErrorContext(ctx, "refresh trending snapshots error", "err", err)
		return
	}
	log.InfoContext(ctx, "TrendingSnapshotJob finished", "cost", time.Since(start).String())
}
