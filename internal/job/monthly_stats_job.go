package job

import (
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/logger"
	"InstaCap/internal/pkg/redis"
	"InstaCap/internal/service"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

type MonthlyStatsJob struct {
	statsSvc service.StatsService
	now      func() time.Time
}

func NewMonthlyStatsJob(statsSvc service.StatsService) *MonthlyStatsJob {
	return &MonthlyStatsJob{
		statsSvc: statsSvc,
		now:      time.Now,
	}
}

// Run 月初清零上个月的桶，多实例下只有一个实例执行
func (s *MonthlyStatsJob) Run() {
	ctx := logger.WithTrace(context.Background(), "job-monthly")
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	release, ok := acquire(ctx, consts.MonthlyResetLock, 10*time.Minute)
	if !ok {
		return
	}
	defer release()

	modified, err := s.statsSvc.ResetMonthlyBuckets(ctx, s.now())
	if err != nil {
		log.ErrorContext(ctx, "reset monthly buckets error", "err", err)
		return
	}
	log.InfoContext(ctx, "MonthlyStatsJob finished", "reset_count", modified)
}

// acquire Redis 未启用时视为单实例，直接执行
func acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool) {
	token := uuid.NewString()
	ok, err := redis.TryLock(ctx, key, token, ttl, 1)
	if err != nil {
		if errors.Is(err, redis.ErrDisabled) {
			return func() {}, true
		}
		log.ErrorContext(ctx, "acquire job lock error", "key", key, "err", err)
		return nil, false
	}
	if !ok {
		log.InfoContext(ctx, "job lock held by another instance, skip", "key", key)
		return nil, false
	}
	return func() { redis.UnLock(context.WithoutCancel(ctx), key, token) }, true
}
