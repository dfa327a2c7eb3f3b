package handler

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/api/dto"
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/service"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGeneration struct {
	last *service.GenerateRequest
}

func (g *stubGeneration) Generate(_ context.Context, req *service.GenerateRequest) (*dto.GenerateResultDTO, error) {
	g.last = req
	res := &dto.GenerateResultDTO{
		Count:       req.Options.Count,
		Tone:        req.Options.Tone,
		Style:       req.Options.Style,
		Platform:    req.Options.Platform,
		GeneratedAt: time.Now(),
	}
	for i := 0; i < req.Options.Count; i++ {
		res.Captions = append(res.Captions, "caption")
	}
	return res, nil
}

type stubCaptions struct {
	service.CaptionService
	deleted     int64
	engagements []string
}

func (c *stubCaptions) RecordEngagement(_ context.Context, _ string, kind string) (*dto.EngagementDTO, error) {
	c.engagements = append(c.engagements, kind)
	return &dto.EngagementDTO{Views: 1}, nil
}

func (c *stubCaptions) DeleteCaption(context.Context, string, string) (int64, error) {
	return c.deleted, nil
}

type stubTrending struct {
	service.TrendingService
	items []*dto.TrendingItemDTO
}

func (s *stubTrending) GetTrending(_ context.Context, q *dto.TrendingQueryDTO) ([]*dto.TrendingItemDTO, string, error) {
	category := q.Category
	if category == "" {
		category = "all"
	}
	return s.items, category, nil
}

type fixture struct {
	router     *gin.Engine
	generation *stubGeneration
	captions   *stubCaptions
	trending   *stubTrending
}

// newFixture uid 非空时模拟已登录
func newFixture(uid string) *fixture {
	f := &fixture{
		generation: &stubGeneration{},
		captions:   &stubCaptions{},
		trending:   &stubTrending{},
	}
	h := NewCaptionHandler(f.captions, f.generation, f.trending, nil, config.Default())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(consts.CtxUID, uid)
		c.Next()
	})
	r.POST("/captions/analyze-image", h.AnalyzeImage)
	r.GET("/captions/trending", h.GetTrending)
	r.DELETE("/captions/:id", h.DeleteCaption)
	r.POST("/captions/:id/engagement/:kind", h.RecordEngagement)
	f.router = r
	return f
}

func (f *fixture) do(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	body := map[string]any{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAnalyzeImageWithoutImage(t *testing.T) {
	f := newFixture("")
	w, body := f.do(postForm("/captions/analyze-image", url.Values{
		"count":    {"4"},
		"style":    {"funny"},
		"platform": {"Twitter"},
		"userId":   {"someone"},
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", w.Code, w.Body.String())
	}
	if body["count"] != float64(4) || body["tone"] != "funny" || body["platform"] != "twitter" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["message"] != "Generated 4 captions successfully" {
		t.Fatalf("message = %v", body["message"])
	}

	last := f.generation.last
	if last.Image != nil {
		t.Fatal("no image was sent")
	}
	if last.UserID != consts.AnonymousUserID {
		t.Fatalf("unauthenticated request owned by %q", last.UserID)
	}
}

func TestAnalyzeImageClampsCount(t *testing.T) {
	f := newFixture("u1")
	w, body := f.do(postForm("/captions/analyze-image", url.Values{"count": {"50"}}))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if body["count"] != float64(6) {
		t.Fatalf("count = %v, want 6", body["count"])
	}
	if f.generation.last.UserID != "u1" {
		t.Fatalf("owner = %q, want token uid", f.generation.last.UserID)
	}
}

func TestAnalyzeImageOwnerMismatch(t *testing.T) {
	f := newFixture("u1")
	w, body := f.do(postForm("/captions/analyze-image", url.Values{"userId": {"u2"}}))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status %d, want 403", w.Code)
	}
	if body["success"] != false {
		t.Fatalf("unexpected body: %v", body)
	}
	if f.generation.last != nil {
		t.Fatal("generation should not run")
	}
}

func TestAnalyzeImageRejectsBadURL(t *testing.T) {
	f := newFixture("")
	w, _ := f.do(postForm("/captions/analyze-image", url.Values{"imageUrl": {"not a url"}}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
}

func TestAnalyzeImageInternalURL(t *testing.T) {
	hits := 0
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, "secret", http.StatusForbidden)
	}))
	defer internal.Close()

	f := newFixture("")
	w, body := f.do(postForm("/captions/analyze-image", url.Values{"imageUrl": {internal.URL + "/admin/secret"}}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", w.Code)
	}
	if body["message"] != "failed to fetch image" {
		t.Fatalf("message = %v", body["message"])
	}
	if hits != 0 {
		t.Fatalf("internal server was contacted %d times", hits)
	}
	if f.generation.last != nil {
		t.Fatal("generation should not run")
	}
}

func TestDeleteCaptionNoMatch(t *testing.T) {
	f := newFixture("u1")
	w, body := f.do(httptest.NewRequest(http.MethodDelete, "/captions/665f1c2e8a1b2c3d4e5f6a7b", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", w.Code)
	}
	if body["deleted"] != false || body["deletedCount"] != float64(0) {
		t.Fatalf("unexpected body: %v", body)
	}

	f.captions.deleted = 1
	_, body = f.do(httptest.NewRequest(http.MethodDelete, "/captions/665f1c2e8a1b2c3d4e5f6a7b", nil))
	if body["deleted"] != true || body["message"] != "Caption deleted successfully" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestTrendingPlaceholder(t *testing.T) {
	f := newFixture("")
	w, body := f.do(httptest.NewRequest(http.MethodGet, "/captions/trending?limit=5&category=travel", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if body["note"] != placeholderNote || body["count"] != float64(5) || body["category"] != "travel" {
		t.Fatalf("unexpected body: %v", body)
	}
	items := body["data"].([]any)
	first := items[0].(map[string]any)
	if first["engagementScore"] != float64(95) {
		t.Fatalf("first score = %v, want 95", first["engagementScore"])
	}
}

func TestTrendingPlaceholderCapsLimit(t *testing.T) {
	f := newFixture("")
	_, body := f.do(httptest.NewRequest(http.MethodGet, "/captions/trending?limit=500", nil))
	if body["count"] != float64(50) {
		t.Fatalf("count = %v, want 50", body["count"])
	}
}

func TestTrendingLiveData(t *testing.T) {
	f := newFixture("")
	f.trending.items = []*dto.TrendingItemDTO{{ID: "c1", Caption: "hello", EngagementScore: 11}}
	_, body := f.do(httptest.NewRequest(http.MethodGet, "/captions/trending", nil))
	if _, ok := body["note"]; ok {
		t.Fatalf("live data should not carry a note: %v", body)
	}
	if body["count"] != float64(1) {
		t.Fatalf("count = %v, want 1", body["count"])
	}
}

func TestRecordEngagementAuth(t *testing.T) {
	anon := newFixture("")
	for _, kind := range []string{"like", "share"} {
		w, _ := anon.do(httptest.NewRequest(http.MethodPost, "/captions/abc/engagement/"+kind, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("anonymous %s: status %d, want 401", kind, w.Code)
		}
	}
	for _, kind := range []string{"view", "copy"} {
		w, _ := anon.do(httptest.NewRequest(http.MethodPost, "/captions/abc/engagement/"+kind, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("anonymous %s: status %d, want 200", kind, w.Code)
		}
	}
	if got := strings.Join(anon.captions.engagements, ","); got != "view,copy" {
		t.Fatalf("recorded %q", got)
	}

	user := newFixture("u1")
	w, body := user.do(httptest.NewRequest(http.MethodPost, "/captions/abc/engagement/like", nil))
	if w.Code != http.StatusOK || body["engagement"] == nil {
		t.Fatalf("signed-in like: status %d body %v", w.Code, body)
	}
}
