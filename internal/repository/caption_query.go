package repository

import (
	"InstaCap/internal/pkg/consts"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	recentWindow     = 3 * 24 * time.Hour
)

// 允许排序的字段，key 为接口参数名
var captionSortFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"likes":     "engagement.likes",
	"shares":    "engagement.shares",
	"copies":    "engagement.copies",
	"views":     "engagement.views",
}

// CaptionQuery 历史列表查询参数
type CaptionQuery struct {
	Page      int64
	Limit     int64
	Search    string
	Category  string
	SortBy    string
	SortOrder string
	Now       time.Time
}

// Normalize 修正分页参数：page 至少为 1，limit 默认 20、上限 100
func (q *CaptionQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Now.IsZero() {
		q.Now = time.Now()
	}
}

func (q *CaptionQuery) Skip() int64 {
	return (q.Page - 1) * q.Limit
}

// Filter 构造用户历史的过滤条件
func (q *CaptionQuery) Filter(userID string) bson.M {
	filter := bson.M{"user_id": userID}
	var and bson.A

	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"content": pattern},
			bson.M{"tags": pattern},
		}})
	}

	switch category := strings.TrimSpace(q.Category); category {
	case "", consts.CategoryAll:
	case consts.CategoryFavorites:
		filter["flags.is_favorite"] = true
	case consts.CategoryRecent:
		filter["created_at"] = bson.M{"$gte": q.Now.Add(-recentWindow)}
	default:
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"metadata.tone": category},
			bson.M{"metadata.style": category},
			bson.M{"category": category},
		}})
	}

	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter
}

// Sort 未知字段回落到 created_at，_id 作为同值时的次序
func (q *CaptionQuery) Sort() bson.D {
	field, ok := captionSortFields[q.SortBy]
	if !ok {
		field = "created_at"
	}
	order := -1
	if strings.EqualFold(q.SortOrder, "asc") {
		order = 1
	}
	return bson.D{{Key: field, Value: order}, {Key: "_id", Value: order}}
}

// TrendingQuery 热榜查询参数
type TrendingQuery struct {
	Category   string
	Limit      int64
	WindowDays int
	Now        time.Time
}

// Filter 只取窗口期内公开的文案
func (q *TrendingQuery) Filter() bson.M {
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	days := q.WindowDays
	if days <= 0 {
		days = 7
	}
	filter := bson.M{
		"created_at":      bson.M{"$gte": now.AddDate(0, 0, -days)},
		"flags.is_public": true,
	}
	if q.Category != "" && q.Category != consts.CategoryAll {
		filter["metadata.tone"] = q.Category
	}
	return filter
}

// Sort 点赞、分享、复制依次降序
func (q *TrendingQuery) Sort() bson.D {
	return bson.D{
		{Key: "engagement.likes", Value: -1},
		{Key: "engagement.shares", Value: -1},
		{Key: "engagement.copies", Value: -1},
		{Key: "_id", Value: -1},
	}
}
