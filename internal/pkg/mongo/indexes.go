package mongo

import (
	"InstaCap/internal/pkg/consts"
	"context"
	"fmt"
	log "log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexPlan 各集合需要的索引
func IndexPlan() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		consts.CollectionUsers: {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		consts.CollectionCaptions: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
			{Keys: bson.D{{Key: "engagement.likes", Value: -1}}},
			{Keys: bson.D{{Key: "flags.is_public", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		consts.CollectionAnalytics: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "event_type", Value: 1}}},
			{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		},
		consts.CollectionTrending: {
			{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "generated_at", Value: -1}}},
		},
		consts.CollectionUserStats: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		consts.CollectionAccounts: {
			{Keys: bson.D{{Key: "uid", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
}

// EnsureIndexes 启动时幂等创建索引
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for name, models := range IndexPlan() {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	log.InfoContext(ctx, "MongoDB indexes ensured")
	return nil
}
