package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStats 每个 uid 一条，计数器只做原子更新
type UserStats struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID                string             `bson:"user_id" json:"userId"`
	CaptionsGenerated     int64              `bson:"captions_generated" json:"captionsGenerated"`
	FavoriteCaptionsCount int64              `bson:"favorite_captions_count" json:"favoriteCaptionsCount"`
	TotalApiCalls         int64              `bson:"total_api_calls" json:"totalApiCalls"`
	StreakDays            int64              `bson:"streak_days" json:"streakDays"`
	LastActiveDate        string             `bson:"last_active_date,omitempty" json:"lastActiveDate,omitempty"`
	TotalLength           int64              `bson:"total_length" json:"-"`
	MonthlyStats          MonthlyStats       `bson:"monthly_stats" json:"monthlyStats"`
	TopCategories         map[string]int64   `bson:"top_categories" json:"topCategories"`
	StyleCounts           map[string]int64   `bson:"style_counts" json:"styleCounts"`
	Preferences           StatsPreferences   `bson:"-" json:"preferences"`
	CreatedAt             time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updatedAt"`
}

// MonthlyStats month/year 与当前月不一致时视为过期桶
type MonthlyStats struct {
	CaptionsThisMonth        int64 `bson:"captions_this_month" json:"captionsThisMonth"`
	ApiCallsThisMonth        int64 `bson:"api_calls_this_month" json:"apiCallsThisMonth"`
	FavoriteActionsThisMonth int64 `bson:"favorite_actions_this_month" json:"favoriteActionsThisMonth"`
	Month                    int   `bson:"month" json:"month"`
	Year                     int   `bson:"year" json:"year"`
}

// Current 桶是否属于 now 所在月份（UTC）
func (m MonthlyStats) Current(now time.Time) bool {
	month, year := MonthOf(now)
	return m.Month == month && m.Year == year
}

// MonthOf 月度桶与连续天数统一按 UTC 划分
func MonthOf(now time.Time) (int, int) {
	utc := now.UTC()
	return int(utc.Month()), utc.Year()
}

// StatsPreferences 读取时由计数推导
type StatsPreferences struct {
	MostUsedTone  string  `json:"mostUsedTone"`
	MostUsedStyle string  `json:"mostUsedStyle"`
	AverageLength float64 `json:"averageLength"`
}
