package repository

import (
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/consts"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TrendingRepo interface {
	SaveSnapshot(ctx context.Context, snapshot *model.TrendingSnapshot) error
	GetSnapshot(ctx context.Context, category string) (*model.TrendingSnapshot, error)
}

type trendingRepoImpl struct {
	col *mongo.Collection
}

func NewTrendingRepo(db *mongo.Database) TrendingRepo {
	return &trendingRepoImpl{
		col: db.Collection(consts.CollectionTrending),
	}
}

// SaveSnapshot 每个分类只保留最新一份
func (s *trendingRepoImpl) SaveSnapshot(ctx context.Context, snapshot *model.TrendingSnapshot) error {
	update := bson.M{"$set": bson.M{
		"window_days":  snapshot.WindowDays,
		"items":        snapshot.Items,
		"generated_at": snapshot.GeneratedAt,
	}}
	_, err := s.col.UpdateOne(ctx, bson.M{"category": snapshot.Category}, update, options.Update().SetUpsert(true))
	return err
}

// GetSnapshot 不存在时返回 nil, nil
func (s *trendingRepoImpl) GetSnapshot(ctx context.Context, category string) (*model.TrendingSnapshot, error) {
	var snapshot model.TrendingSnapshot
	err := s.col.FindOne(ctx, bson.M{"category": category}).Decode(&snapshot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}
