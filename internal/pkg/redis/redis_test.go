package redis

import (
	"InstaCap/internal/pkg/consts"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	Rdb = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = Rdb.Close()
		Rdb = nil
	})
	return mr
}

func TestExists(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	ok, err := Exists(ctx, "k")
	if err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	_ = mr.Set("k", "v")
	ok, err = Exists(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("present key: ok=%v err=%v", ok, err)
	}
}

func TestHelpersWithoutRedis(t *testing.T) {
	Rdb = nil
	ctx := context.Background()

	if _, err := Exists(ctx, "k"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("Exists err = %v, want ErrDisabled", err)
	}
	if _, err := IncrWindow(ctx, "k", time.Minute); !errors.Is(err, ErrDisabled) {
		t.Fatalf("IncrWindow err = %v, want ErrDisabled", err)
	}
	revoked, err := NewTokenBlacklist().IsRevoked(ctx, "sig")
	if err != nil || revoked {
		t.Fatalf("IsRevoked without redis: revoked=%v err=%v", revoked, err)
	}
}

func TestTokenBlacklist(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()
	bl := NewTokenBlacklist()

	revoked, err := bl.IsRevoked(ctx, "sig-a")
	if err != nil || revoked {
		t.Fatalf("fresh signature: revoked=%v err=%v", revoked, err)
	}

	if err = bl.Revoke(ctx, "sig-a", time.Minute); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if ttl := mr.TTL(consts.TokenBlacklistKey + "sig-a"); ttl != time.Minute {
		t.Fatalf("blacklist ttl = %v, want 1m", ttl)
	}
	revoked, err = bl.IsRevoked(ctx, "sig-a")
	if err != nil || !revoked {
		t.Fatalf("revoked signature: revoked=%v err=%v", revoked, err)
	}
	if revoked, _ = bl.IsRevoked(ctx, "sig-b"); revoked {
		t.Fatal("other signature must not be revoked")
	}

	mr.FastForward(time.Minute + time.Second)
	if revoked, _ = bl.IsRevoked(ctx, "sig-a"); revoked {
		t.Fatal("entry should expire with the token")
	}
}

func TestTokenBlacklistExpiredToken(t *testing.T) {
	mr := setupRedis(t)
	if err := NewTokenBlacklist().Revoke(context.Background(), "sig", 0); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if mr.Exists(consts.TokenBlacklistKey + "sig") {
		t.Fatal("already expired token should not be stored")
	}
}

func TestIncrWindow(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()
	key := consts.RateLimitKey + "1.2.3.4"

	for i := int64(1); i <= 3; i++ {
		res, err := IncrWindow(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("IncrWindow #%d: %v", i, err)
		}
		if res.Count != i {
			t.Fatalf("count = %d, want %d", res.Count, i)
		}
		if res.ResetIn <= 0 || res.ResetIn > time.Minute {
			t.Fatalf("reset in %v, want (0, 1m]", res.ResetIn)
		}
	}

	mr.FastForward(time.Minute + time.Second)
	res, err := IncrWindow(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("IncrWindow after window: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("new window count = %d, want 1", res.Count)
	}
}

func TestJSONCache(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()
	cache := NewJSONCache()

	type entry struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}

	var got entry
	if hit, err := cache.Get(ctx, "trending:a", &got); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}
	if err := cache.Set(ctx, "trending:a", entry{Name: "x", Score: 3}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if hit, err := cache.Get(ctx, "trending:a", &got); err != nil || !hit || got.Score != 3 {
		t.Fatalf("cached: hit=%v err=%v got=%+v", hit, err, got)
	}

	_ = cache.Set(ctx, "trending:b", entry{Name: "y"}, time.Minute)
	_ = cache.Set(ctx, "other", entry{Name: "z"}, time.Minute)
	if err := cache.Invalidate(ctx, "trending:"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if hit, _ := cache.Get(ctx, "trending:b", &got); hit {
		t.Fatal("prefix entries should be gone")
	}
	if hit, _ := cache.Get(ctx, "other", &got); !hit {
		t.Fatal("unrelated entry should survive")
	}
}
