package service

import (
	"InstaCap/internal/api/dto"
	"InstaCap/internal/model"
	"InstaCap/internal/repository"
	"context"
	log "log/slog"
	"time"
)

const defaultEventLimit = 100

// 查询时间范围
var analyticsRanges = map[string]time.Duration{
	"1d":  24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
}

// ClientMeta 请求方信息，随事件一起落库
type ClientMeta struct {
	SessionID string
	UserAgent string
	IPAddress string
}

type AnalyticsService interface {
	Track(ctx context.Context, userID string, in *dto.AnalyticsEventDTO, meta *ClientMeta) (*model.AnalyticsEvent, error)
	Record(ctx context.Context, userID, eventType string, data map[string]any)
	ListEvents(ctx context.Context, userID string, q *dto.AnalyticsQueryDTO) (*AnalyticsReport, error)
}

// AnalyticsReport 时间范围内的事件与按类型计数
type AnalyticsReport struct {
	Range  string                    `json:"range"`
	Since  time.Time                 `json:"since"`
	Events []*model.AnalyticsEvent   `json:"events"`
	Counts []*repository.CountBucket `json:"counts"`
}

type analyticsServiceImpl struct {
	analyticsRepo repository.AnalyticsRepo
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepo) AnalyticsService {
	return &analyticsServiceImpl{
		analyticsRepo: analyticsRepo,
	}
}

func (s *analyticsServiceImpl) Track(ctx context.Context, userID string, in *dto.AnalyticsEventDTO, meta *ClientMeta) (*model.AnalyticsEvent, error) {
	event := &model.AnalyticsEvent{
		UserID:    userID,
		EventType: in.EventType,
		EventData: in.EventData,
		SessionID: in.SessionID,
		Timestamp: time.Now(),
	}
	if meta != nil {
		if event.SessionID == "" {
			event.SessionID = meta.SessionID
		}
		event.UserAgent = meta.UserAgent
		event.IPAddress = meta.IPAddress
	}
	if err := s.analyticsRepo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Record 内部埋点，失败只记录日志
func (s *analyticsServiceImpl) Record(ctx context.Context, userID, eventType string, data map[string]any) {
	event := &model.AnalyticsEvent{
		UserID:    userID,
		EventType: eventType,
		EventData: data,
		Timestamp: time.Now(),
	}
	if err := s.analyticsRepo.CreateEvent(ctx, event); err != nil {
		log.WarnContext(ctx, "failed to record analytics event", "event", eventType, "uid", userID, "err", err)
	}
}

func (s *analyticsServiceImpl) ListEvents(ctx context.Context, userID string, q *dto.AnalyticsQueryDTO) (*AnalyticsReport, error) {
	rng := q.Range
	window, ok := analyticsRanges[rng]
	if !ok {
		rng = "7d"
		window = analyticsRanges[rng]
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	since := time.Now().Add(-window)

	events, err := s.analyticsRepo.GetUserEvents(ctx, userID, since, q.EventType, limit)
	if err != nil {
		return nil, err
	}
	counts, err := s.analyticsRepo.CountEventsByType(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	return &AnalyticsReport{
		Range:  rng,
		Since:  since,
		Events: events,
		Counts: counts,
	}, nil
}
