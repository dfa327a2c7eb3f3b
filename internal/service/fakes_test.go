package service

import (
	"InstaCap/internal/api/dto"
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/identity"
	"InstaCap/internal/pkg/llm"
	"InstaCap/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// fakeCaptionRepo 内存版文案存储
type fakeCaptionRepo struct {
	mu          sync.Mutex
	captions    map[primitive.ObjectID]*model.Caption
	createCalls int
	createErr   error
	deleteErr   error
	trending    []*model.Caption
	trendingErr error
	trendingHit int
}

func newFakeCaptionRepo() *fakeCaptionRepo {
	return &fakeCaptionRepo{captions: make(map[primitive.ObjectID]*model.Caption)}
}

func (m *fakeCaptionRepo) CreateCaption(ctx context.Context, caption *model.Caption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	caption.ID = primitive.NewObjectID()
	cp := *caption
	m.captions[caption.ID] = &cp
	return nil
}

func (m *fakeCaptionRepo) GetCaptionByID(ctx context.Context, id primitive.ObjectID) (*model.Caption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.captions[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *fakeCaptionRepo) GetUserCaptions(ctx context.Context, userID string, q *repository.CaptionQuery) ([]*model.Caption, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*model.Caption
	for _, c := range m.captions {
		if c.UserID == userID {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	start := min(q.Skip(), total)
	end := min(start+q.Limit, total)
	return all[start:end], total, nil
}

func (m *fakeCaptionRepo) ExportUserCaptions(ctx context.Context, userID string, limit int64) ([]*model.Caption, error) {
	list, _, err := m.GetUserCaptions(ctx, userID, &repository.CaptionQuery{Page: 1, Limit: limit})
	return list, err
}

func (m *fakeCaptionRepo) ToggleFavorite(ctx context.Context, id primitive.ObjectID, userID string) (*model.Caption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.captions[id]
	if !ok || c.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}
	c.Flags.IsFavorite = !c.Flags.IsFavorite
	cp := *c
	return &cp, nil
}

func (m *fakeCaptionRepo) DeleteCaption(ctx context.Context, id primitive.ObjectID, userID string) (*model.Caption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.captions[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	delete(m.captions, id)
	return c, nil
}

func (m *fakeCaptionRepo) DeleteUserCaptions(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var n int64
	for id, c := range m.captions {
		if c.UserID == userID {
			delete(m.captions, id)
			n++
		}
	}
	return n, nil
}

func (m *fakeCaptionRepo) UpdateCaption(ctx context.Context, id primitive.ObjectID, userID string, upd *repository.CaptionUpdate) (*model.Caption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.captions[id]
	if !ok || c.UserID != userID {
		return nil, mongo.ErrNoDocuments
	}
	if upd.Content != nil {
		c.Content = *upd.Content
	}
	if upd.Tags != nil {
		c.Tags = upd.Tags
	}
	if upd.IsPublic != nil {
		c.Flags.IsPublic = *upd.IsPublic
	}
	cp := *c
	return &cp, nil
}

func (m *fakeCaptionRepo) IncrementEngagement(ctx context.Context, id primitive.ObjectID, kind string) (*model.Caption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.captions[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	switch kind {
	case "like":
		c.Engagement.Likes++
	case "share":
		c.Engagement.Shares++
	case "copy":
		c.Engagement.Copies++
	case "view":
		c.Engagement.Views++
	default:
		return nil, repository.ErrUnknownEngagement
	}
	cp := *c
	return &cp, nil
}

func (m *fakeCaptionRepo) GetTrendingCaptions(ctx context.Context, q *repository.TrendingQuery) ([]*model.Caption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trendingHit++
	return m.trending, m.trendingErr
}

func (m *fakeCaptionRepo) CountUserCaptions(ctx context.Context, userID string, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.captions {
		if c.UserID == userID && !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *fakeCaptionRepo) GetToneBreakdown(ctx context.Context, userID string, limit int64) ([]*repository.CountBucket, error) {
	return nil, nil
}

func (m *fakeCaptionRepo) GetDailyActivity(ctx context.Context, userID string, since time.Time) ([]*repository.DailyActivity, error) {
	return nil, nil
}

func (m *fakeCaptionRepo) countFor(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.captions {
		if c.UserID == userID {
			n++
		}
	}
	return n
}

func currentBucket(now time.Time) model.MonthlyStats {
	month, year := model.MonthOf(now)
	return model.MonthlyStats{Month: month, Year: year}
}

// fakeStatsRepo 只模拟计数，不模拟月度桶的管道逻辑
type fakeStatsRepo struct {
	mu        sync.Mutex
	stats     map[string]*model.UserStats
	incErr    error
	deleteErr error
	favDeltas []int64
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{stats: make(map[string]*model.UserStats)}
}

func (m *fakeStatsRepo) CreateUserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	return m.GetOrCreateUserStats(ctx, userID)
}

func (m *fakeStatsRepo) GetOrCreateUserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[userID]
	if !ok {
		now := time.Now()
		s = &model.UserStats{
			UserID:       userID,
			MonthlyStats: currentBucket(now),
		}
		m.stats[userID] = s
	}
	cp := *s
	return &cp, nil
}

func (m *fakeStatsRepo) IncrementCaptionCount(ctx context.Context, userID string, act *repository.CaptionActivity) error {
	if m.incErr != nil {
		return m.incErr
	}
	_, _ = m.GetOrCreateUserStats(ctx, userID)
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats[userID]
	s.CaptionsGenerated++
	s.TotalApiCalls++
	s.TotalLength += int64(act.Length)
	s.MonthlyStats.CaptionsThisMonth++
	return nil
}

func (m *fakeStatsRepo) AdjustFavoriteCount(ctx context.Context, userID string, delta int64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favDeltas = append(m.favDeltas, delta)
	return nil
}

func (m *fakeStatsRepo) ResetStaleMonthlyBuckets(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (m *fakeStatsRepo) DeleteUserStats(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	if _, ok := m.stats[userID]; !ok {
		return 0, nil
	}
	delete(m.stats, userID)
	return 1, nil
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[string]*model.User
	upsertFn func(in *repository.UserUpsert) error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (m *fakeUserRepo) CreateOrUpdateUser(ctx context.Context, in *repository.UserUpsert) (*model.User, bool, error) {
	if m.upsertFn != nil {
		if err := m.upsertFn(in); err != nil {
			return nil, false, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[in.UID]
	if !ok {
		u = &model.User{UID: in.UID, Preferences: model.DefaultPreferences(), Subscription: model.DefaultSubscription()}
		m.users[in.UID] = u
	}
	if in.Email != "" {
		u.Email = in.Email
	}
	if in.DisplayName != "" {
		u.DisplayName = in.DisplayName
	}
	cp := *u
	return &cp, !ok, nil
}

func (m *fakeUserRepo) GetUserByUID(ctx context.Context, uid string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[uid]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *fakeUserRepo) UpdateProfile(ctx context.Context, uid string, upd *repository.ProfileUpdate) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[uid]
	if !ok {
		return nil, nil
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Theme != nil {
		u.Preferences.Theme = *upd.Theme
	}
	cp := *u
	return &cp, nil
}

func (m *fakeUserRepo) IncrementCounters(ctx context.Context, uid string, captions, likes int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[uid]; ok {
		u.CaptionsGenerated += captions
		u.TotalLikes += likes
	}
	return nil
}

func (m *fakeUserRepo) DeleteUser(ctx context.Context, uid string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[uid]; !ok {
		return 0, nil
	}
	delete(m.users, uid)
	return 1, nil
}

type fakeAnalyticsRepo struct {
	mu     sync.Mutex
	events []*model.AnalyticsEvent
	err    error
}

func (m *fakeAnalyticsRepo) CreateEvent(ctx context.Context, event *model.AnalyticsEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *fakeAnalyticsRepo) GetUserEvents(ctx context.Context, userID string, since time.Time, eventType string, limit int64) ([]*model.AnalyticsEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AnalyticsEvent
	for _, e := range m.events {
		if e.UserID == userID && (eventType == "" || e.EventType == eventType) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *fakeAnalyticsRepo) CountEventsByType(ctx context.Context, userID string, since time.Time) ([]*repository.CountBucket, error) {
	return nil, nil
}

func (m *fakeAnalyticsRepo) typesFor(userID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e.EventType)
		}
	}
	return out
}

type fakeTrendingRepo struct {
	snapshots map[string]*model.TrendingSnapshot
	saved     []string
}

func (m *fakeTrendingRepo) SaveSnapshot(ctx context.Context, snapshot *model.TrendingSnapshot) error {
	if m.snapshots == nil {
		m.snapshots = make(map[string]*model.TrendingSnapshot)
	}
	m.snapshots[snapshot.Category] = snapshot
	m.saved = append(m.saved, snapshot.Category)
	return nil
}

func (m *fakeTrendingRepo) GetSnapshot(ctx context.Context, category string) (*model.TrendingSnapshot, error) {
	return m.snapshots[category], nil
}

// fakeCache 以 any 保存，Get 时通过类型断言写回
type fakeCache struct {
	data        map[string]any
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]any)}
}

func (m *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]*dto.TrendingItemDTO:
		*d = v.([]*dto.TrendingItemDTO)
	}
	return true, nil
}

func (m *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	m.data[key] = v
	return nil
}

func (m *fakeCache) Invalidate(ctx context.Context, prefix string) error {
	m.invalidated = append(m.invalidated, prefix)
	m.data = make(map[string]any)
	return nil
}

type fakeProvider struct {
	users     map[string]*identity.Identity
	passwords map[string]string
	createErr error
	deleteErr error
	deleted   []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{users: make(map[string]*identity.Identity), passwords: make(map[string]string)}
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) VerifyToken(ctx context.Context, token string) (*identity.Identity, error) {
	if id, ok := p.users[token]; ok {
		return id, nil
	}
	return nil, identity.ErrInvalidToken
}

func (p *fakeProvider) GetUser(ctx context.Context, uid string) (*identity.Identity, error) {
	if id, ok := p.users[uid]; ok {
		return id, nil
	}
	return nil, identity.ErrUserNotFound
}

func (p *fakeProvider) CreateUser(ctx context.Context, email, password, displayName string) (*identity.Identity, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	id := &identity.Identity{UID: "uid-" + email, Email: email, DisplayName: displayName}
	p.users[id.UID] = id
	return id, nil
}

func (p *fakeProvider) SignIn(ctx context.Context, email, password string) (*identity.Identity, error) {
	if id, ok := p.users["uid-"+email]; ok && password == "secret1" {
		return id, nil
	}
	return nil, identity.ErrInvalidCredentials
}

func (p *fakeProvider) CustomToken(ctx context.Context, uid string) (string, error) {
	return "token-" + uid, nil
}

func (p *fakeProvider) UpdateUser(ctx context.Context, uid string, displayName, photoURL *string) error {
	return nil
}

func (p *fakeProvider) ChangePassword(ctx context.Context, uid, currentPassword, newPassword string) error {
	current, ok := p.passwords[uid]
	if !ok {
		return identity.ErrUserNotFound
	}
	if current != currentPassword {
		return identity.ErrInvalidCredentials
	}
	p.passwords[uid] = newPassword
	return nil
}

func (p *fakeProvider) DeleteUser(ctx context.Context, uid string) error {
	p.deleted = append(p.deleted, uid)
	return p.deleteErr
}

func (p *fakeProvider) RevokeToken(ctx context.Context, token string) error {
	return nil
}

type fakeEnhancer struct {
	lines []string
	err   error
	block bool
	calls int
	last  *llm.CaptionRequest
}

func (e *fakeEnhancer) GenerateCaptions(ctx context.Context, req *llm.CaptionRequest) ([]string, error) {
	e.calls++
	e.last = req
	if e.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return e.lines, e.err
}

func (e *fakeEnhancer) Model() string { return "fake-vision" }

type fakeImageStore struct {
	objects map[string][]byte
	err     error
}

func (s *fakeImageStore) Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.objects == nil {
		s.objects = make(map[string][]byte)
	}
	s.objects[objectName] = data
	return "http://objects.local/" + objectName, nil
}
