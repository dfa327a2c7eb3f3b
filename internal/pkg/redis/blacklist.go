package redis

import (
	"InstaCap/internal/pkg/consts"
	"context"
	"time"
)

// TokenBlacklist 已登出 Token 的签名，保留到 Token 自然过期
type TokenBlacklist struct{}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{}
}

func (b *TokenBlacklist) Revoke(ctx context.Context, signature string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return SetWithExpiration(ctx, consts.TokenBlacklistKey+signature, "1", ttl)
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, signature string) (bool, error) {
	if Rdb == nil {
		return false, nil
	}
	return Exists(ctx, consts.TokenBlacklistKey+signature)
}
