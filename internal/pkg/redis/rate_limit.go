package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// 固定窗口计数，首次命中时设置过期
var fixedWindowScript = redis.NewScript(`
local c = redis.call('INCR', KEYS[1])
if c == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {c, redis.call('PTTL', KEYS[1])}
`)

// WindowResult 本次计数结果
type WindowResult struct {
	Count   int64
	ResetIn time.Duration
}

// IncrWindow 对 key 所在窗口计数 +1
func IncrWindow(ctx context.Context, key string, window time.Duration) (*WindowResult, error) {
	if Rdb == nil {
		return nil, ErrDisabled
	}
	vals, err := fixedWindowScript.Run(ctx, Rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return nil, err
	}
	res := &WindowResult{Count: vals[0]}
	if len(vals) > 1 && vals[1] > 0 {
		res.ResetIn = time.Duration(vals[1]) * time.Millisecond
	}
	return res, nil
}
