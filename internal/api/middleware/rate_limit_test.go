package middleware

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/pkg/redis"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

func limitedRouter(cfg config.RateLimitConfig) *gin.Engine {
	r := gin.New()
	r.Use(RateLimitMiddleware(cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func hit(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	redis.Rdb = goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = redis.Rdb.Close()
		redis.Rdb = nil
	})

	r := limitedRouter(config.RateLimitConfig{Enable: true, WindowSeconds: 60, Max: 2})

	for i := 0; i < 2; i++ {
		if w := hit(r, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, w.Code)
		}
	}
	w := hit(r, "10.0.0.1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("over limit: status %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" || w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("unexpected headers: %v", w.Header())
	}

	if w = hit(r, "10.0.0.2"); w.Code != http.StatusOK {
		t.Fatalf("other client: status %d, want 200", w.Code)
	}

	mr.FastForward(61 * time.Second)
	if w = hit(r, "10.0.0.1"); w.Code != http.StatusOK {
		t.Fatalf("next window: status %d, want 200", w.Code)
	}
}

func TestRateLimitMiddlewareWithoutRedis(t *testing.T) {
	redis.Rdb = nil
	r := limitedRouter(config.RateLimitConfig{Enable: true, WindowSeconds: 60, Max: 1})
	for i := 0; i < 3; i++ {
		if w := hit(r, "10.0.0.1"); w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, w.Code)
		}
	}
}
