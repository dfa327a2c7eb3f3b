package repository

import (
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/consts"
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dateLayout = "2006-01-02"

// CaptionActivity 一次文案创建对统计的贡献
type CaptionActivity struct {
	Tone   string
	Style  string
	Length int
	Now    time.Time
}

type UserStatsRepo interface {
	CreateUserStats(ctx context.Context, userID string) (*model.UserStats, error)
	GetOrCreateUserStats(ctx context.Context, userID string) (*model.UserStats, error)
	IncrementCaptionCount(ctx context.Context, userID string, act *CaptionActivity) error
	AdjustFavoriteCount(ctx context.Context, userID string, delta int64, now time.Time) error
	ResetStaleMonthlyBuckets(ctx context.Context, now time.Time) (int64, error)
	DeleteUserStats(ctx context.Context, userID string) (int64, error)
}

type userStatsRepoImpl struct {
	col *mongo.Collection
}

func NewUserStatsRepo(db *mongo.Database) UserStatsRepo {
	return &userStatsRepoImpl{
		col: db.Collection(consts.CollectionUserStats),
	}
}

// zeroStats 新建统计记录的初始值
func zeroStats(now time.Time) bson.M {
	return bson.M{
		"captions_generated":      int64(0),
		"favorite_captions_count": int64(0),
		"total_api_calls":         int64(0),
		"streak_days":             int64(0),
		"total_length":            int64(0),
		"monthly_stats":           currentMonthBucket(now),
		"top_categories":          bson.M{},
		"style_counts":            bson.M{},
		"created_at":              now,
		"updated_at":              now,
	}
}

func currentMonthBucket(now time.Time) model.MonthlyStats {
	month, year := model.MonthOf(now)
	return model.MonthlyStats{Month: month, Year: year}
}

// CreateUserStats 已存在时保持原值
func (s *userStatsRepoImpl) CreateUserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	return s.GetOrCreateUserStats(ctx, userID)
}

// GetOrCreateUserStats 读取统计，不存在则以零值创建
func (s *userStatsRepoImpl) GetOrCreateUserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stats model.UserStats
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID},
		bson.M{"$setOnInsert": zeroStats(time.Now())},
		opts,
	).Decode(&stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// IncrementCaptionCount 单条管道 upsert，同时完成月度桶滚动与连续天数计算
func (s *userStatsRepoImpl) IncrementCaptionCount(ctx context.Context, userID string, act *CaptionActivity) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"user_id": userID},
		captionIncrementPipeline(act),
		options.Update().SetUpsert(true),
	)
	return err
}

// AdjustFavoriteCount 收藏数不低于 0，本月收藏操作数 +1
func (s *userStatsRepoImpl) AdjustFavoriteCount(ctx context.Context, userID string, delta int64, now time.Time) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"user_id": userID},
		favoritePipeline(delta, now),
		options.Update().SetUpsert(true),
	)
	return err
}

// ResetStaleMonthlyBuckets 将不属于当前月份的桶清零
func (s *userStatsRepoImpl) ResetStaleMonthlyBuckets(ctx context.Context, now time.Time) (int64, error) {
	month, year := model.MonthOf(now)
	filter := bson.M{"$or": bson.A{
		bson.M{"monthly_stats.month": bson.M{"$ne": month}},
		bson.M{"monthly_stats.year": bson.M{"$ne": year}},
	}}
	update := bson.M{"$set": bson.M{
		"monthly_stats": currentMonthBucket(now),
		"updated_at":    now,
	}}
	res, err := s.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *userStatsRepoImpl) DeleteUserStats(ctx context.Context, userID string) (int64, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// sameMonth 表达式：库内桶是否属于 now 所在月份
func sameMonth(now time.Time) bson.M {
	month, year := model.MonthOf(now)
	return bson.M{"$and": bson.A{
		bson.M{"$eq": bson.A{"$monthly_stats.month", month}},
		bson.M{"$eq": bson.A{"$monthly_stats.year", year}},
	}}
}

func ifNullZero(path string) bson.M {
	return bson.M{"$ifNull": bson.A{path, 0}}
}

func addTo(path string, delta any) bson.M {
	return bson.M{"$add": bson.A{ifNullZero(path), delta}}
}

// monthlyField 同月累加，跨月从 0 开始
func monthlyField(now time.Time, field string, delta int64) bson.M {
	path := "$monthly_stats." + field
	return bson.M{"$add": bson.A{
		bson.M{"$cond": bson.A{sameMonth(now), ifNullZero(path), 0}},
		delta,
	}}
}

func monthlyBucket(now time.Time, captions, apiCalls, favorites int64) bson.M {
	month, year := model.MonthOf(now)
	return bson.M{
		"captions_this_month":         monthlyField(now, "captions_this_month", captions),
		"api_calls_this_month":        monthlyField(now, "api_calls_this_month", apiCalls),
		"favorite_actions_this_month": monthlyField(now, "favorite_actions_this_month", favorites),
		"month":                       month,
		"year":                        year,
	}
}

// safeKey 只接受可作为字段名的枚举值
func safeKey(v string) string {
	if v == "" || strings.ContainsAny(v, ".$") {
		return ""
	}
	return v
}

func captionIncrementPipeline(act *CaptionActivity) mongo.Pipeline {
	now := act.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := now.UTC().Format(dateLayout)
	yesterday := now.UTC().AddDate(0, 0, -1).Format(dateLayout)

	set := bson.M{
		"captions_generated":      addTo("$captions_generated", 1),
		"total_api_calls":         addTo("$total_api_calls", 1),
		"total_length":            addTo("$total_length", act.Length),
		"favorite_captions_count": ifNullZero("$favorite_captions_count"),
		"monthly_stats":           monthlyBucket(now, 1, 1, 0),
		"streak_days": bson.M{"$switch": bson.M{
			"branches": bson.A{
				bson.M{
					"case": bson.M{"$eq": bson.A{"$last_active_date", today}},
					"then": bson.M{"$max": bson.A{ifNullZero("$streak_days"), 1}},
				},
				bson.M{
					"case": bson.M{"$eq": bson.A{"$last_active_date", yesterday}},
					"then": addTo("$streak_days", 1),
				},
			},
			"default": 1,
		}},
		"last_active_date": today,
		"created_at":       bson.M{"$ifNull": bson.A{"$created_at", now}},
		"updated_at":       now,
	}
	if tone := safeKey(act.Tone); tone != "" {
		set["top_categories."+tone] = addTo("$top_categories."+tone, 1)
	}
	if style := safeKey(act.Style); style != "" {
		set["style_counts."+style] = addTo("$style_counts."+style, 1)
	}

	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}

func favoritePipeline(delta int64, now time.Time) mongo.Pipeline {
	set := bson.M{
		"favorite_captions_count": bson.M{"$max": bson.A{0, addTo("$favorite_captions_count", delta)}},
		"captions_generated":      ifNullZero("$captions_generated"),
		"total_api_calls":         ifNullZero("$total_api_calls"),
		"monthly_stats":           monthlyBucket(now, 0, 0, 1),
		"created_at":              bson.M{"$ifNull": bson.A{"$created_at", now}},
		"updated_at":              now,
	}
	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}
