package redis

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/pkg/logger"
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

var Rdb *redis.Client

var ErrDisabled = errors.New("redis is not initialized")

// InitRedis 初始化 Redis 客户端连接
func InitRedis(cfg config.RedisConfig) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,

		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
	rdb.AddHook(logger.NewRedisLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return err
	}

	Rdb = rdb
	return nil
}

// Enabled Redis 可用时缓存、限流与 Token 吊销才生效
func Enabled() bool {
	return Rdb != nil
}

// Ping 健康检查
func Ping(ctx context.Context) error {
	if Rdb == nil {
		return ErrDisabled
	}
	return Rdb.Ping(ctx).Err()
}

func Close() error {
	if Rdb == nil {
		return nil
	}
	return Rdb.Close()
}
