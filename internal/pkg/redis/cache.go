package redis

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// JSONCache 以 JSON 形式缓存对象，Redis 未初始化时所有读都未命中
type JSONCache struct{}

func NewJSONCache() *JSONCache {
	return &JSONCache{}
}

// Get 命中返回 true
func (c *JSONCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if Rdb == nil {
		return false, nil
	}
	raw, err := GetValue(ctx, key)
	if err != nil || raw == "" {
		return false, err
	}
	if err = json.Unmarshal([]byte(raw), dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if Rdb == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return SetWithExpiration(ctx, key, data, ttl)
}

func (c *JSONCache) Invalidate(ctx context.Context, prefix string) error {
	if Rdb == nil {
		return nil
	}
	return DeleteByPrefix(ctx, prefix)
}
