package job

import (
	"InstaCap/internal/service"
	"context"
	"errors"
	"testing"
	"time"
)

type stubStats struct {
	service.StatsService
	resetAt []time.Time
	err     error
}

func (s *stubStats) ResetMonthlyBuckets(_ context.Context, now time.Time) (int64, error) {
	s.resetAt = append(s.resetAt, now)
	return 2, s.err
}

type stubTrending struct {
	service.TrendingService
	refreshed int
	err       error
}

func (s *stubTrending) RefreshSnapshots(context.Context) error {
	s.refreshed++
	return s.err
}

func TestMonthlyStatsJobRunsWithoutRedis(t *testing.T) {
	stats := &stubStats{}
	j := NewMonthlyStatsJob(stats)
	fixed := time.Date(2026, 4, 1, 0, 5, 0, 0, time.UTC)
	j.now = func() time.Time { return fixed }

	j.Run()
	if len(stats.resetAt) != 1 || !stats.resetAt[0].Equal(fixed) {
		t.Fatalf("reset calls = %v", stats.resetAt)
	}

	stats.err = errors.New("mongo down")
	j.Run()
	if len(stats.resetAt) != 2 {
		t.Fatal("job should keep running on the next tick after a failure")
	}
}

func TestTrendingSnapshotJob(t *testing.T) {
	trending := &stubTrending{}
	j := NewTrendingSnapshotJob(trending)
	j.Run()
	trending.err = errors.New("timeout")
	j.Run()
	if trending.refreshed != 2 {
		t.Fatalf("refreshed %d times, want 2", trending.refreshed)
	}
}
