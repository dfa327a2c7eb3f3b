package service

import (
	"InstaCap/internal/model"
	"context"
	"testing"
	"time"
)

func TestDeriveStatsZeroesStaleBucket(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	stats := &model.UserStats{
		CaptionsGenerated: 3,
		TotalLength:       100,
		MonthlyStats:      model.MonthlyStats{CaptionsThisMonth: 9, Month: 2, Year: 2026},
		TopCategories:     map[string]int64{"funny": 2, "casual": 2, "trendy": 1},
		StyleCounts:       map[string]int64{"short": 1, "long": 2},
	}
	deriveStats(stats, now)

	if stats.MonthlyStats.CaptionsThisMonth != 0 || stats.MonthlyStats.Month != 3 || stats.MonthlyStats.Year != 2026 {
		t.Fatalf("stale bucket should read as zero for the current month, got %+v", stats.MonthlyStats)
	}
	if stats.Preferences.MostUsedTone != "casual" {
		t.Errorf("mostUsedTone = %q, want casual", stats.Preferences.MostUsedTone)
	}
	if stats.Preferences.MostUsedStyle != "long" {
		t.Errorf("mostUsedStyle = %q, want long", stats.Preferences.MostUsedStyle)
	}
	if stats.Preferences.AverageLength != 33.3 {
		t.Errorf("averageLength = %v, want 33.3", stats.Preferences.AverageLength)
	}
}

func TestDeriveStatsKeepsCurrentBucket(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	stats := &model.UserStats{MonthlyStats: model.MonthlyStats{CaptionsThisMonth: 4, Month: 3, Year: 2026}}
	deriveStats(stats, now)

	if stats.MonthlyStats.CaptionsThisMonth != 4 {
		t.Fatalf("current bucket should be kept, got %+v", stats.MonthlyStats)
	}
	if stats.Preferences.MostUsedTone != "" || stats.Preferences.AverageLength != 0 {
		t.Fatalf("empty stats should have empty preferences, got %+v", stats.Preferences)
	}
	if stats.TopCategories == nil || stats.StyleCounts == nil {
		t.Fatal("maps should be initialized")
	}
}

func TestGetCaptionAnalyticsOrdersCategories(t *testing.T) {
	stats := newFakeStatsRepo()
	now := time.Now()
	stats.stats["u1"] = &model.UserStats{
		UserID:            "u1",
		CaptionsGenerated: 4,
		MonthlyStats:      currentBucket(now),
		TopCategories:     map[string]int64{"funny": 1, "casual": 3},
	}
	svc := NewStatsService(stats, newFakeCaptionRepo())

	out, err := svc.GetCaptionAnalytics(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if out.TotalCaptions != 4 || len(out.TopCategories) != 2 || out.TopCategories[0].Category != "casual" {
		t.Fatalf("unexpected analytics %+v", out)
	}
}

func TestGetActivityClampsDays(t *testing.T) {
	svc := NewStatsService(newFakeStatsRepo(), newFakeCaptionRepo())
	for in, want := range map[int]int{0: 30, -1: 30, 7: 7, 1000: 365} {
		out, err := svc.GetActivity(context.Background(), "u1", in)
		if err != nil {
			t.Fatal(err)
		}
		if out.Days != want {
			t.Errorf("days(%d) = %d, want %d", in, out.Days, want)
		}
	}
}
