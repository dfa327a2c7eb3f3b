package repository

import (
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/consts"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// 互动类型到计数字段
var engagementFields = map[string]string{
	consts.EngagementLike:  "engagement.likes",
	consts.EngagementShare: "engagement.shares",
	consts.EngagementCopy:  "engagement.copies",
	consts.EngagementView:  "engagement.views",
}

var ErrUnknownEngagement = errors.New("unknown engagement kind")

// CaptionUpdate 文案可修改的字段，nil 表示不修改
type CaptionUpdate struct {
	Content  *string
	Tags     []string
	IsPublic *bool
}

// CountBucket 聚合计数
type CountBucket struct {
	Key   string `bson:"_id" json:"key"`
	Count int64  `bson:"count" json:"count"`
}

// DailyActivity 按天聚合的创作记录
type DailyActivity struct {
	Date   string   `bson:"_id" json:"date"`
	Count  int64    `bson:"count" json:"count"`
	Tones  []string `bson:"tones" json:"tones"`
	Styles []string `bson:"styles" json:"styles"`
}

type CaptionRepo interface {
	CreateCaption(ctx context.Context, caption *model.Caption) error
	GetCaptionByID(ctx context.Context, id primitive.ObjectID) (*model.Caption, error)
	GetUserCaptions(ctx context.Context, userID string, q *CaptionQuery) ([]*model.Caption, int64, error)
	ExportUserCaptions(ctx context.Context, userID string, limit int64) ([]*model.Caption, error)
	ToggleFavorite(ctx context.Context, id primitive.ObjectID, userID string) (*model.Caption, error)
	DeleteCaption(ctx context.Context, id primitive.ObjectID, userID string) (*model.Caption, error)
	DeleteUserCaptions(ctx context.Context, userID string) (int64, error)
	UpdateCaption(ctx context.Context, id primitive.ObjectID, userID string, upd *CaptionUpdate) (*model.Caption, error)
	IncrementEngagement(ctx context.Context, id primitive.ObjectID, kind string) (*model.Caption, error)
	GetTrendingCaptions(ctx context.Context, q *TrendingQuery) ([]*model.Caption, error)
	CountUserCaptions(ctx context.Context, userID string, since time.Time) (int64, error)
	GetToneBreakdown(ctx context.Context, userID string, limit int64) ([]*CountBucket, error)
	GetDailyActivity(ctx context.Context, userID string, since time.Time) ([]*DailyActivity, error)
}

type captionRepoImpl struct {
	col *mongo.Collection
}

func NewCaptionRepo(db *mongo.Database) CaptionRepo {
	return &captionRepoImpl{
		col: db.Collection(consts.CollectionCaptions),
	}
}

// CreateCaption 插入文案并回填 ID
func (s *captionRepoImpl) CreateCaption(ctx context.Context, caption *model.Caption) error {
	res, err := s.col.InsertOne(ctx, caption)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		caption.ID = oid
	}
	return nil
}

func (s *captionRepoImpl) GetCaptionByID(ctx context.Context, id primitive.ObjectID) (*model.Caption, error) {
	var caption model.Caption
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&caption); err != nil {
		return nil, err
	}
	return &caption, nil
}

// GetUserCaptions 分页查询，返回当前页与总数
func (s *captionRepoImpl) GetUserCaptions(ctx context.Context, userID string, q *CaptionQuery) ([]*model.Caption, int64, error) {
	q.Normalize()
	filter := q.Filter(userID)

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(q.Sort()).
		SetSkip(q.Skip()).
		SetLimit(q.Limit)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*model.Caption, 0, q.Limit)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ExportUserCaptions 按创建时间倒序取出用户全部文案，limit 为上限
func (s *captionRepoImpl) ExportUserCaptions(ctx context.Context, userID string, limit int64) ([]*model.Caption, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*model.Caption, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ToggleFavorite 用管道更新在库内取反，返回更新后的文档
func (s *captionRepoImpl) ToggleFavorite(ctx context.Context, id primitive.ObjectID, userID string) (*model.Caption, error) {
	filter := bson.M{"_id": id, "user_id": userID}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"flags.is_favorite": bson.M{"$not": bson.A{"$flags.is_favorite"}},
			"updated_at":        time.Now(),
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var caption model.Caption
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&caption); err != nil {
		return nil, err
	}
	return &caption, nil
}

// DeleteCaption id 与 owner 都匹配才删除，未命中返回 nil, nil
func (s *captionRepoImpl) DeleteCaption(ctx context.Context, id primitive.ObjectID, userID string) (*model.Caption, error) {
	var caption model.Caption
	err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&caption)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &caption, nil
}

func (s *captionRepoImpl) DeleteUserCaptions(ctx context.Context, userID string) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// UpdateCaption 部分更新，内容变化时同步 tags
func (s *captionRepoImpl) UpdateCaption(ctx context.Context, id primitive.ObjectID, userID string, upd *CaptionUpdate) (*model.Caption, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.Content != nil {
		set["content"] = *upd.Content
	}
	if upd.Tags != nil {
		set["tags"] = upd.Tags
	}
	if upd.IsPublic != nil {
		set["flags.is_public"] = *upd.IsPublic
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var caption model.Caption
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"$set": set}, opts).Decode(&caption)
	if err != nil {
		return nil, err
	}
	return &caption, nil
}

// IncrementEngagement 互动计数 +1
func (s *captionRepoImpl) IncrementEngagement(ctx context.Context, id primitive.ObjectID, kind string) (*model.Caption, error) {
	field, ok := engagementFields[kind]
	if !ok {
		return nil, ErrUnknownEngagement
	}
	update := bson.M{
		"$inc": bson.M{field: 1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var caption model.Caption
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&caption); err != nil {
		return nil, err
	}
	return &caption, nil
}

// GetTrendingCaptions 窗口期内公开文案按互动排序
func (s *captionRepoImpl) GetTrendingCaptions(ctx context.Context, q *TrendingQuery) ([]*model.Caption, error) {
	opts := options.Find().
		SetSort(q.Sort()).
		SetLimit(q.Limit)

	cursor, err := s.col.Find(ctx, q.Filter(), opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*model.Caption, 0, q.Limit)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CountUserCaptions since 为零值时统计全部
func (s *captionRepoImpl) CountUserCaptions(ctx context.Context, userID string, since time.Time) (int64, error) {
	filter := bson.M{"user_id": userID}
	if !since.IsZero() {
		filter["created_at"] = bson.M{"$gte": since}
	}
	return s.col.CountDocuments(ctx, filter)
}

// GetToneBreakdown 用户最常用的语气
func (s *captionRepoImpl) GetToneBreakdown(ctx context.Context, userID string, limit int64) ([]*CountBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{"_id": "$metadata.tone", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*CountBucket, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetDailyActivity 按 UTC 日期聚合
func (s *captionRepoImpl) GetDailyActivity(ctx context.Context, userID string, since time.Time) ([]*DailyActivity, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID, "created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":    bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$created_at"}},
			"count":  bson.M{"$sum": 1},
			"tones":  bson.M{"$addToSet": "$metadata.tone"},
			"styles": bson.M{"$addToSet": "$metadata.style"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*DailyActivity, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
