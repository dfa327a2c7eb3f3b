package service

import (
	"InstaCap/internal/api/dto"
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/util"
	"InstaCap/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CaptionInput 保存文案的入参，生成流程与手动保存共用
type CaptionInput struct {
	UserID         string
	Content        string
	OriginalPrompt string
	Platform       string
	Category       string
	ImageURL       string
	ImageObject    string
	Metadata       model.CaptionMetadata
	Tags           []string
	IsPublic       *bool
}

// CreatedCaption 计数器更新失败不影响插入结果，只在 CounterErr 中体现
type CreatedCaption struct {
	Caption    *model.Caption
	CounterErr error
}

type CaptionService interface {
	CreateCaption(ctx context.Context, in *CaptionInput) (*CreatedCaption, error)
	GetUserCaptions(ctx context.Context, userID string, q *dto.HistoryQueryDTO) (*dto.HistoryDTO, error)
	ToggleFavorite(ctx context.Context, captionID, userID string) (bool, error)
	DeleteCaption(ctx context.Context, captionID, userID string) (int64, error)
	UpdateCaption(ctx context.Context, captionID, userID string, in *dto.CaptionUpdateDTO) (*dto.CaptionDTO, error)
	RecordEngagement(ctx context.Context, captionID, kind string) (*dto.EngagementDTO, error)
}

type captionServiceImpl struct {
	captionRepo  repository.CaptionRepo
	userRepo     repository.UserRepo
	statsRepo    repository.UserStatsRepo
	analyticsSvc AnalyticsService
}

func NewCaptionService(
	captionRepo repository.CaptionRepo,
	userRepo repository.UserRepo,
	statsRepo repository.UserStatsRepo,
	analyticsSvc AnalyticsService,
) CaptionService {
	return &captionServiceImpl{
		captionRepo:  captionRepo,
		userRepo:     userRepo,
		statsRepo:    statsRepo,
		analyticsSvc: analyticsSvc,
	}
}

func validateContent(content string) error {
	if utf8.RuneCountInString(content) > consts.MaxCaptionLength {
		return ErrCaptionTooLong
	}
	return nil
}

// CreateCaption 校验失败时不会访问存储
func (s *captionServiceImpl) CreateCaption(ctx context.Context, in *CaptionInput) (*CreatedCaption, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, ErrCaptionRequired
	}
	if err := validateContent(in.Content); err != nil {
		return nil, err
	}

	now := time.Now()
	caption := &model.Caption{
		UserID:         in.UserID,
		Content:        in.Content,
		OriginalPrompt: in.OriginalPrompt,
		Platform:       in.Platform,
		Category:       in.Category,
		ImageURL:       in.ImageURL,
		ImageObject:    in.ImageObject,
		Metadata:       in.Metadata,
		Flags:          model.CaptionFlags{IsPublic: true},
		Tags:           in.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if caption.Platform == "" {
		caption.Platform = consts.PlatformInstagram
	}
	if caption.Metadata.GenerationMethod == "" {
		caption.Metadata.GenerationMethod = consts.GenerationManual
	}
	if in.IsPublic != nil {
		caption.Flags.IsPublic = *in.IsPublic
	}
	if caption.Tags == nil {
		caption.Tags = util.ExtractTags(in.Content)
	}

	if err := s.captionRepo.CreateCaption(ctx, caption); err != nil {
		return nil, err
	}

	result := &CreatedCaption{Caption: caption}
	act := &repository.CaptionActivity{
		Tone:   caption.Metadata.Tone,
		Style:  caption.Metadata.Style,
		Length: utf8.RuneCountInString(caption.Content),
		Now:    now,
	}
	if err := s.statsRepo.IncrementCaptionCount(ctx, caption.UserID, act); err != nil {
		log.WarnContext(ctx, "failed to increment caption stats", "uid", caption.UserID, "err", err)
		result.CounterErr = err
	}
	if err := s.userRepo.IncrementCounters(ctx, caption.UserID, 1, 0); err != nil {
		log.WarnContext(ctx, "failed to increment user counters", "uid", caption.UserID, "err", err)
		result.CounterErr = errors.Join(result.CounterErr, err)
	}
	return result, nil
}

// GetUserCaptions 分页查询，totalPages = ceil(total/limit)
func (s *captionServiceImpl) GetUserCaptions(ctx context.Context, userID string, in *dto.HistoryQueryDTO) (*dto.HistoryDTO, error) {
	q := &repository.CaptionQuery{
		Page:      in.Page,
		Limit:     in.Limit,
		Search:    in.Search,
		Category:  in.Category,
		SortBy:    in.SortBy,
		SortOrder: in.SortOrder,
	}
	q.Normalize()
	list, total, err := s.captionRepo.GetUserCaptions(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	totalPages := (total + q.Limit - 1) / q.Limit
	captions := make([]*dto.CaptionDTO, 0, len(list))
	for _, c := range list {
		captions = append(captions, ToCaptionDTO(c))
	}
	return &dto.HistoryDTO{
		Captions:   captions,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
		HasMore:    q.Page < totalPages,
		HasPrev:    q.Page > 1,
	}, nil
}

// ToggleFavorite id 与 owner 不匹配时返回 ErrCaptionNotFound
func (s *captionServiceImpl) ToggleFavorite(ctx context.Context, captionID, userID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(captionID)
	if err != nil {
		return false, ErrCaptionNotFound
	}
	caption, err := s.captionRepo.ToggleFavorite(ctx, oid, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrCaptionNotFound
		}
		return false, err
	}

	isFavorite := caption.Flags.IsFavorite
	delta := int64(-1)
	if isFavorite {
		delta = 1
	}
	if err = s.statsRepo.AdjustFavoriteCount(ctx, userID, delta, time.Now()); err != nil {
		log.WarnContext(ctx, "failed to adjust favorite stats", "uid", userID, "err", err)
	}
	s.analyticsSvc.Record(ctx, userID, consts.EventCaptionFavorited, map[string]any{
		"captionId":  captionID,
		"isFavorite": isFavorite,
	})
	return isFavorite, nil
}

// DeleteCaption 未命中返回 0，不视为错误
func (s *captionServiceImpl) DeleteCaption(ctx context.Context, captionID, userID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(captionID)
	if err != nil {
		return 0, nil
	}
	caption, err := s.captionRepo.DeleteCaption(ctx, oid, userID)
	if err != nil {
		return 0, err
	}
	if caption == nil {
		return 0, nil
	}

	if caption.Flags.IsFavorite {
		if err = s.statsRepo.AdjustFavoriteCount(ctx, userID, -1, time.Now()); err != nil {
			log.WarnContext(ctx, "failed to adjust favorite stats", "uid", userID, "err", err)
		}
	}
	s.analyticsSvc.Record(ctx, userID, consts.EventCaptionDeleted, map[string]any{"captionId": captionID})
	return 1, nil
}

func (s *captionServiceImpl) UpdateCaption(ctx context.Context, captionID, userID string, in *dto.CaptionUpdateDTO) (*dto.CaptionDTO, error) {
	oid, err := primitive.ObjectIDFromHex(captionID)
	if err != nil {
		return nil, ErrCaptionNotFound
	}

	upd := &repository.CaptionUpdate{IsPublic: in.IsPublic, Tags: in.Tags}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, ErrCaptionRequired
		}
		if err = validateContent(*in.Content); err != nil {
			return nil, err
		}
		upd.Content = in.Content
		if upd.Tags == nil {
			upd.Tags = util.ExtractTags(*in.Content)
		}
	}

	caption, err := s.captionRepo.UpdateCaption(ctx, oid, userID, upd)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCaptionNotFound
		}
		return nil, err
	}
	return ToCaptionDTO(caption), nil
}

// RecordEngagement 互动计数 +1，点赞同时累加作者的 totalLikes
func (s *captionServiceImpl) RecordEngagement(ctx context.Context, captionID, kind string) (*dto.EngagementDTO, error) {
	oid, err := primitive.ObjectIDFromHex(captionID)
	if err != nil {
		return nil, ErrCaptionNotFound
	}
	caption, err := s.captionRepo.IncrementEngagement(ctx, oid, kind)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownEngagement) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEngagement, kind)
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCaptionNotFound
		}
		return nil, err
	}

	if kind == consts.EngagementLike {
		if err = s.userRepo.IncrementCounters(ctx, caption.UserID, 0, 1); err != nil {
			log.WarnContext(ctx, "failed to increment total likes", "uid", caption.UserID, "err", err)
		}
	}
	s.analyticsSvc.Record(ctx, caption.UserID, "caption_"+kind, map[string]any{"captionId": captionID})

	var out dto.EngagementDTO
	_ = copier.Copy(&out, &caption.Engagement)
	return &out, nil
}

// ToCaptionDTO 模型转返回结构
func ToCaptionDTO(c *model.Caption) *dto.CaptionDTO {
	out := &dto.CaptionDTO{
		ID:             c.ID.Hex(),
		UserID:         c.UserID,
		Content:        c.Content,
		OriginalPrompt: c.OriginalPrompt,
		Platform:       c.Platform,
		Category:       c.Category,
		ImageURL:       c.ImageURL,
		IsFavorite:     c.Flags.IsFavorite,
		IsPublic:       c.Flags.IsPublic,
		Tags:           c.Tags,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	_ = copier.Copy(&out.Metadata, &c.Metadata)
	_ = copier.Copy(&out.Engagement, &c.Engagement)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}
