package service

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/api/dto"
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"
)

// Cache 热榜缓存
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Invalidate(ctx context.Context, prefix string) error
}

type TrendingService interface {
	GetTrending(ctx context.Context, q *dto.TrendingQueryDTO) ([]*dto.TrendingItemDTO, string, error)
	RefreshSnapshots(ctx context.Context) error
}

type trendingServiceImpl struct {
	captionRepo  repository.CaptionRepo
	trendingRepo repository.TrendingRepo
	cache        Cache
	cfg          config.TrendingConfig
}

func NewTrendingService(captionRepo repository.CaptionRepo, trendingRepo repository.TrendingRepo, cache Cache, cfg config.TrendingConfig) TrendingService {
	return &trendingServiceImpl{
		captionRepo:  captionRepo,
		trendingRepo: trendingRepo,
		cache:        cache,
		cfg:          cfg,
	}
}

func (s *trendingServiceImpl) normalize(q *dto.TrendingQueryDTO) (string, int64) {
	category := strings.ToLower(strings.TrimSpace(q.Category))
	if category == "" {
		category = consts.CategoryAll
	}
	limit := q.Limit
	if limit <= 0 {
		limit = int64(s.cfg.DefaultLimit)
	}
	if maxLimit := int64(s.cfg.MaxLimit); maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return category, limit
}

func trendingCacheKey(category string, limit int64) string {
	return fmt.Sprintf("%s%s:%d", consts.TrendingCacheKey, category, limit)
}

// GetTrending 缓存 -> 实时查询 -> 定时快照，返回结果可能为空
func (s *trendingServiceImpl) GetTrending(ctx context.Context, q *dto.TrendingQueryDTO) ([]*dto.TrendingItemDTO, string, error) {
	category, limit := s.normalize(q)
	key := trendingCacheKey(category, limit)

	var cached []*dto.TrendingItemDTO
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		log.WarnContext(ctx, "trending cache read failed", "key", key, "err", err)
	} else if hit {
		return cached, category, nil
	}

	list, err := s.captionRepo.GetTrendingCaptions(ctx, &repository.TrendingQuery{
		Category:   category,
		Limit:      limit,
		WindowDays: s.cfg.WindowDays,
		Now:        time.Now(),
	})
	if err != nil {
		log.WarnContext(ctx, "live trending query failed, trying snapshot", "category", category, "err", err)
		items, snapErr := s.fromSnapshot(ctx, category, limit)
		if snapErr != nil || items == nil {
			return nil, category, err
		}
		return items, category, nil
	}

	items := make([]*dto.TrendingItemDTO, 0, len(list))
	for _, c := range list {
		items = append(items, toTrendingItem(c))
	}
	if len(items) > 0 {
		ttl := time.Duration(s.cfg.CacheTTLSeconds) * time.Second
		if err = s.cache.Set(ctx, key, items, ttl); err != nil {
			log.WarnContext(ctx, "trending cache write failed", "key", key, "err", err)
		}
	}
	return items, category, nil
}

func (s *trendingServiceImpl) fromSnapshot(ctx context.Context, category string, limit int64) ([]*dto.TrendingItemDTO, error) {
	snapshot, err := s.trendingRepo.GetSnapshot(ctx, category)
	if err != nil || snapshot == nil {
		return nil, err
	}
	// 快照过期后不再使用
	if time.Since(snapshot.GeneratedAt) > time.Duration(snapshot.WindowDays)*24*time.Hour {
		return nil, nil
	}
	items := make([]*dto.TrendingItemDTO, 0, len(snapshot.Items))
	for i, it := range snapshot.Items {
		if int64(i) >= limit {
			break
		}
		items = append(items, &dto.TrendingItemDTO{
			ID:              it.CaptionID.Hex(),
			Caption:         it.Content,
			Tone:            it.Tone,
			Style:           it.Style,
			EngagementScore: it.Score,
			CreatedAt:       it.CreatedAt,
			Category:        it.Tone,
		})
	}
	return items, nil
}

// RefreshSnapshots 为每个分类重算热榜并落库，随后清空缓存
func (s *trendingServiceImpl) RefreshSnapshots(ctx context.Context) error {
	now := time.Now()
	categories := append([]string{consts.CategoryAll}, consts.Tones...)

	var failed int
	for _, category := range categories {
		list, err := s.captionRepo.GetTrendingCaptions(ctx, &repository.TrendingQuery{
			Category:   category,
			Limit:      int64(s.cfg.MaxLimit),
			WindowDays: s.cfg.WindowDays,
			Now:        now,
		})
		if err != nil {
			log.ErrorContext(ctx, "trending snapshot query failed", "category", category, "err", err)
			failed++
			continue
		}

		snapshot := &model.TrendingSnapshot{
			Category:    category,
			WindowDays:  s.cfg.WindowDays,
			Items:       make([]model.TrendingItem, 0, len(list)),
			GeneratedAt: now,
		}
		for _, c := range list {
			snapshot.Items = append(snapshot.Items, model.TrendingItem{
				CaptionID: c.ID,
				Content:   c.Content,
				Tone:      c.Metadata.Tone,
				Style:     c.Metadata.Style,
				Score:     c.Engagement.Score(),
				CreatedAt: c.CreatedAt,
			})
		}
		if err = s.trendingRepo.SaveSnapshot(ctx, snapshot); err != nil {
			log.ErrorContext(ctx, "trending snapshot save failed", "category", category, "err", err)
			failed++
		}
	}

	if err := s.cache.Invalidate(ctx, consts.TrendingCacheKey); err != nil {
		log.WarnContext(ctx, "trending cache invalidate failed", "err", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d trending snapshots failed", failed, len(categories))
	}
	return nil
}

func toTrendingItem(c *model.Caption) *dto.TrendingItemDTO {
	return &dto.TrendingItemDTO{
		ID:              c.ID.Hex(),
		Caption:         c.Content,
		Tone:            c.Metadata.Tone,
		Style:           c.Metadata.Style,
		EngagementScore: c.Engagement.Score(),
		CreatedAt:       c.CreatedAt,
		Category:        c.Metadata.Tone,
	}
}
