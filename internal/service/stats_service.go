package service

import (
	"InstaCap/internal/api/dto"
	"InstaCap/internal/model"
	"InstaCap/internal/repository"
	"context"
	"math"
	"sort"
	"time"
)

const (
	recentStatsWindow = 30 * 24 * time.Hour
	topToneLimit      = 5
	defaultActivity   = 30
	maxActivity       = 365
)

type StatsService interface {
	GetUserStats(ctx context.Context, userID string) (*model.UserStats, error)
	GetSummary(ctx context.Context, userID string) (*dto.UserStatsDTO, error)
	GetCaptionAnalytics(ctx context.Context, userID string) (*dto.CaptionAnalyticsDTO, error)
	GetActivity(ctx context.Context, userID string, days int) (*dto.ActivityDTO, error)
	ResetMonthlyBuckets(ctx context.Context, now time.Time) (int64, error)
}

type statsServiceImpl struct {
	statsRepo   repository.UserStatsRepo
	captionRepo repository.CaptionRepo
}

func NewStatsService(statsRepo repository.UserStatsRepo, captionRepo repository.CaptionRepo) StatsService {
	return &statsServiceImpl{
		statsRepo:   statsRepo,
		captionRepo: captionRepo,
	}
}

// GetUserStats 不存在时创建零值记录，跨月的桶按零值返回
func (s *statsServiceImpl) GetUserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	stats, err := s.statsRepo.GetOrCreateUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	deriveStats(stats, time.Now())
	return stats, nil
}

func deriveStats(stats *model.UserStats, now time.Time) {
	if !stats.MonthlyStats.Current(now) {
		month, year := model.MonthOf(now)
		stats.MonthlyStats = model.MonthlyStats{Month: month, Year: year}
	}
	if stats.TopCategories == nil {
		stats.TopCategories = map[string]int64{}
	}
	if stats.StyleCounts == nil {
		stats.StyleCounts = map[string]int64{}
	}

	stats.Preferences = model.StatsPreferences{
		MostUsedTone:  mostUsed(stats.TopCategories),
		MostUsedStyle: mostUsed(stats.StyleCounts),
	}
	if stats.CaptionsGenerated > 0 {
		avg := float64(stats.TotalLength) / float64(stats.CaptionsGenerated)
		stats.Preferences.AverageLength = math.Round(avg*10) / 10
	}
}

// mostUsed 次数相同时取字典序靠前的
func mostUsed(counts map[string]int64) string {
	best, bestCount := "", int64(0)
	for k, v := range counts {
		if v > bestCount || (v == bestCount && v > 0 && k < best) {
			best, bestCount = k, v
		}
	}
	return best
}

func sortedCounts(counts map[string]int64) []*dto.CategoryCount {
	list := make([]*dto.CategoryCount, 0, len(counts))
	for k, v := range counts {
		list = append(list, &dto.CategoryCount{Category: k, Count: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Category < list[j].Category
	})
	return list
}

func (s *statsServiceImpl) GetSummary(ctx context.Context, userID string) (*dto.UserStatsDTO, error) {
	stats, err := s.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	total, err := s.captionRepo.CountUserCaptions(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	recent, err := s.captionRepo.CountUserCaptions(ctx, userID, time.Now().Add(-recentStatsWindow))
	if err != nil {
		return nil, err
	}
	buckets, err := s.captionRepo.GetToneBreakdown(ctx, userID, topToneLimit)
	if err != nil {
		return nil, err
	}

	tones := make([]*dto.CategoryCount, 0, len(buckets))
	for _, b := range buckets {
		if b.Key == "" {
			continue
		}
		tones = append(tones, &dto.CategoryCount{Category: b.Key, Count: b.Count})
	}
	return &dto.UserStatsDTO{
		Stats:          stats,
		TotalCaptions:  total,
		RecentCaptions: recent,
		TopTones:       tones,
	}, nil
}

func (s *statsServiceImpl) GetCaptionAnalytics(ctx context.Context, userID string) (*dto.CaptionAnalyticsDTO, error) {
	stats, err := s.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.CaptionAnalyticsDTO{
		TotalCaptions:    stats.CaptionsGenerated,
		FavoriteCaptions: stats.FavoriteCaptionsCount,
		MonthlyStats:     stats.MonthlyStats,
		TopCategories:    sortedCounts(stats.TopCategories),
		Preferences:      stats.Preferences,
	}, nil
}

func (s *statsServiceImpl) GetActivity(ctx context.Context, userID string, days int) (*dto.ActivityDTO, error) {
	if days <= 0 {
		days = defaultActivity
	}
	if days > maxActivity {
		days = maxActivity
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	list, err := s.captionRepo.GetDailyActivity(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	out := &dto.ActivityDTO{
		Days:     days,
		Since:    since,
		Activity: make([]*dto.ActivityDayDTO, 0, len(list)),
	}
	for _, d := range list {
		out.Total += d.Count
		out.Activity = append(out.Activity, &dto.ActivityDayDTO{
			Date:   d.Date,
			Count:  d.Count,
			Tones:  d.Tones,
			Styles: d.Styles,
		})
	}
	return out, nil
}

// ResetMonthlyBuckets 月初任务调用
func (s *statsServiceImpl) ResetMonthlyBuckets(ctx context.Context, now time.Time) (int64, error) {
	return s.statsRepo.ResetStaleMonthlyBuckets(ctx, now)
}
