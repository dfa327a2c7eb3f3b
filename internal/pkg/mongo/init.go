package mongo

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/pkg/logger"
	"context"
	"errors"
	log "log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store 文档库句柄，由 main 构造并注入各个 repo
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect 建立客户端；服务端不可达不会在这里失败，由 Ping 反映
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	timeout := time.Duration(cfg.ConnectTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URL).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetMonitor(logger.NewMongoMonitor()),
	)
	if err != nil {
		return nil, err
	}

	log.Info("MongoDB client created", "db", cfg.Database)
	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// NewStore 包装已有的 Database，测试使用
func NewStore(db *mongo.Database) *Store {
	return &Store{client: db.Client(), db: db}
}

func (s *Store) Database() *mongo.Database {
	return s.db
}

// Ping 健康检查，返回往返耗时
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	if s == nil || s.client == nil {
		return 0, errors.New("mongo store is not initialized")
	}
	start := time.Now()
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

func (s *Store) Disconnect(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
