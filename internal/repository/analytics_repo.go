package repository

import (
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/consts"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AnalyticsRepo interface {
	CreateEvent(ctx context.Context, event *model.AnalyticsEvent) error
	GetUserEvents(ctx context.Context, userID string, since time.Time, eventType string, limit int64) ([]*model.AnalyticsEvent, error)
	CountEventsByType(ctx context.Context, userID string, since time.Time) ([]*CountBucket, error)
}

type analyticsRepoImpl struct {
	col *mongo.Collection
}

func NewAnalyticsRepo(db *mongo.Database) AnalyticsRepo {
	return &analyticsRepoImpl{
		col: db.Collection(consts.CollectionAnalytics),
	}
}

// CreateEvent 追加事件
func (s *analyticsRepoImpl) CreateEvent(ctx context.Context, event *model.AnalyticsEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	res, err := s.col.InsertOne(ctx, event)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		event.ID = oid
	}
	return nil
}

// GetUserEvents 时间倒序拉取用户事件
func (s *analyticsRepoImpl) GetUserEvents(ctx context.Context, userID string, since time.Time, eventType string, limit int64) ([]*model.AnalyticsEvent, error) {
	filter := bson.M{"user_id": userID, "timestamp": bson.M{"$gte": since}}
	if eventType != "" {
		filter["event_type"] = eventType
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*model.AnalyticsEvent, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CountEventsByType 按事件类型计数
func (s *analyticsRepoImpl) CountEventsByType(ctx context.Context, userID string, since time.Time) ([]*CountBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID, "timestamp": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": "$event_type", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
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
