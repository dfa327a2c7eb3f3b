package service

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/api/dto"
	"InstaCap/internal/model"
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func trendingConfig() config.TrendingConfig {
	return config.TrendingConfig{WindowDays: 7, DefaultLimit: 20, MaxLimit: 50, CacheTTLSeconds: 60}
}

func sampleCaption(content, tone string, likes int64) *model.Caption {
	return &model.Caption{
		ID:         primitive.NewObjectID(),
		Content:    content,
		Metadata:   model.CaptionMetadata{Tone: tone, Style: "short"},
		Engagement: model.CaptionEngagement{Likes: likes, Shares: 1},
		CreatedAt:  time.Now(),
	}
}

func TestGetTrendingUsesCacheAfterFirstQuery(t *testing.T) {
	captions := newFakeCaptionRepo()
	captions.trending = []*model.Caption{sampleCaption("top", "funny", 10)}
	cache := newFakeCache()
	svc := NewTrendingService(captions, &fakeTrendingRepo{}, cache, trendingConfig())
	ctx := context.Background()

	items, category, err := svc.GetTrending(ctx, &dto.TrendingQueryDTO{Category: "Funny"})
	if err != nil {
		t.Fatal(err)
	}
	if category != "funny" || len(items) != 1 || items[0].EngagementScore != 11 {
		t.Fatalf("category=%q items=%+v", category, items)
	}

	if _, _, err = svc.GetTrending(ctx, &dto.TrendingQueryDTO{Category: "funny"}); err != nil {
		t.Fatal(err)
	}
	if captions.trendingHit != 1 {
		t.Fatalf("second call should hit the cache, repo queried %d times", captions.trendingHit)
	}
}

func TestGetTrendingEmptyIsNotCached(t *testing.T) {
	captions := newFakeCaptionRepo()
	cache := newFakeCache()
	svc := NewTrendingService(captions, &fakeTrendingRepo{}, cache, trendingConfig())

	items, category, err := svc.GetTrending(context.Background(), &dto.TrendingQueryDTO{})
	if err != nil {
		t.Fatal(err)
	}
	if category != "all" || len(items) != 0 {
		t.Fatalf("category=%q items=%d", category, len(items))
	}
	if len(cache.data) != 0 {
		t.Fatal("empty result should not be cached")
	}
}

func TestGetTrendingFallsBackToFreshSnapshot(t *testing.T) {
	captions := newFakeCaptionRepo()
	captions.trendingErr = errors.New("db down")
	repo := &fakeTrendingRepo{snapshots: map[string]*model.TrendingSnapshot{
		"all": {
			Category:    "all",
			WindowDays:  7,
			GeneratedAt: time.Now().Add(-time.Hour),
			Items: []model.TrendingItem{
				{CaptionID: primitive.NewObjectID(), Content: "a", Tone: "casual", Score: 5},
				{CaptionID: primitive.NewObjectID(), Content: "b", Tone: "funny", Score: 3},
			},
		},
	}}
	svc := NewTrendingService(captions, repo, newFakeCache(), trendingConfig())

	items, _, err := svc.GetTrending(context.Background(), &dto.TrendingQueryDTO{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Caption != "a" {
		t.Fatalf("unexpected snapshot items %+v", items)
	}
}

func TestGetTrendingStaleSnapshotPropagatesError(t *testing.T) {
	captions := newFakeCaptionRepo()
	captions.trendingErr = errors.New("db down")
	repo := &fakeTrendingRepo{snapshots: map[string]*model.TrendingSnapshot{
		"all": {Category: "all", WindowDays: 7, GeneratedAt: time.Now().AddDate(0, 0, -8)},
	}}
	svc := NewTrendingService(captions, repo, newFakeCache(), trendingConfig())

	if _, _, err := svc.GetTrending(context.Background(), &dto.TrendingQueryDTO{}); err == nil {
		t.Fatal("expected the store error")
	}
}

func TestRefreshSnapshotsCoversAllCategories(t *testing.T) {
	captions := newFakeCaptionRepo()
	captions.trending = []*model.Caption{sampleCaption("x", "casual", 1)}
	repo := &fakeTrendingRepo{}
	cache := newFakeCache()
	cache.data["caption:trending:all:20"] = []*dto.TrendingItemDTO{}
	svc := NewTrendingService(captions, repo, cache, trendingConfig())

	if err := svc.RefreshSnapshots(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(repo.saved) != 6 {
		t.Fatalf("saved %d snapshots, want 6", len(repo.saved))
	}
	if len(cache.invalidated) != 1 || len(cache.data) != 0 {
		t.Fatal("cache should be invalidated after refresh")
	}
}

func TestTrendingLimitIsCapped(t *testing.T) {
	svc := NewTrendingService(newFakeCaptionRepo(), &fakeTrendingRepo{}, newFakeCache(), trendingConfig()).(*trendingServiceImpl)
	if _, limit := svc.normalize(&dto.TrendingQueryDTO{Limit: 500}); limit != 50 {
		t.Fatalf("limit = %d, want 50", limit)
	}
	if _, limit := svc.normalize(&dto.TrendingQueryDTO{}); limit != 20 {
		t.Fatalf("default limit = %d, want 20", limit)
	}
}
