package handler

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/api/dto"
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/response"
	"InstaCap/internal/pkg/util"
	"InstaCap/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// multipart 表单字段的额外余量
const multipartOverhead = 1 << 20

type CaptionHandler struct {
	captionSvc    service.CaptionService
	generationSvc service.GenerationService
	trendingSvc   service.TrendingService
	statsSvc      service.StatsService
	cfg           *config.Config
}

func NewCaptionHandler(
	captionSvc service.CaptionService,
	generationSvc service.GenerationService,
	trendingSvc service.TrendingService,
	statsSvc service.StatsService,
	cfg *config.Config,
) *CaptionHandler {
	return &CaptionHandler{
		captionSvc:    captionSvc,
		generationSvc: generationSvc,
		trendingSvc:   trendingSvc,
		statsSvc:      statsSvc,
		cfg:           cfg,
	}
}

// AnalyzeImage 生成候选文案，图片可选
func (s *CaptionHandler) AnalyzeImage(c *gin.Context) {
	maxSize := s.cfg.Server.MaxUploadSize
	if c.Request.ContentLength > maxSize+multipartOverhead {
		response.Error(c, util.ErrFileTooLarge)
		return
	}

	var req dto.GenerateCaptionDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	uid, err := resolveOwner(c, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	image, err := s.readImage(c, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.generationSvc.Generate(context.WithoutCancel(c.Request.Context()), &service.GenerateRequest{
		Options: service.ResolveOptions(&req, s.cfg.Generation),
		Prompt:  req.Prompt,
		Image:   image,
		UserID:  uid,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"message":     fmt.Sprintf("Generated %d captions successfully", res.Count),
		"captions":    res.Captions,
		"data":        res.Data,
		"count":       res.Count,
		"style":       res.Style,
		"tone":        res.Tone,
		"platform":    res.Platform,
		"enhanced":    res.Enhanced,
		"generatedAt": res.GeneratedAt,
	})
}

// resolveOwner 已登录时以 Token 为准，未登录时不保存
func resolveOwner(c *gin.Context, bodyUID string) (string, error) {
	authUID := c.GetString(consts.CtxUID)
	bodyUID = strings.TrimSpace(bodyUID)
	if authUID == "" {
		return consts.AnonymousUserID, nil
	}
	if bodyUID != "" && bodyUID != consts.AnonymousUserID && bodyUID != authUID {
		return "", service.ErrForbidden
	}
	return authUID, nil
}

// readImage 优先读取上传文件，其次下载 imageUrl
func (s *CaptionHandler) readImage(c *gin.Context, req *dto.GenerateCaptionDTO) (*util.UploadedImage, error) {
	maxSize := s.cfg.Server.MaxUploadSize
	allowed := s.cfg.Server.AllowedFileTypes

	fh, err := c.FormFile("image")
	if err == nil {
		if fh.Size > maxSize {
			return nil, util.ErrFileTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			return nil, service.ErrParamInvalid
		}
		defer func() { _ = f.Close() }()
		return util.ReadImage(f, fh.Filename, maxSize, allowed)
	}
	if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return nil, service.ErrParamInvalid
	}

	if req.ImageURL != "" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()
		return util.FetchImage(ctx, req.ImageURL, maxSize, allowed)
	}
	return nil, nil
}

// CreateCaption 直接保存一条文案
func (s *CaptionHandler) CreateCaption(c *gin.Context) {
	var req dto.CaptionCreateDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	input := &service.CaptionInput{
		UserID:         c.GetString(consts.CtxUID),
		Content:        req.Content,
		OriginalPrompt: req.OriginalPrompt,
		Platform:       req.Platform,
		Category:       req.Category,
		ImageURL:       req.ImageURL,
		Tags:           req.Tags,
		IsPublic:       req.IsPublic,
		Metadata: model.CaptionMetadata{
			Tone:             req.Tone,
			Style:            req.Style,
			Language:         req.Language,
			IncludeHashtags:  req.IncludeHashtags == nil || *req.IncludeHashtags,
			IncludeEmojis:    req.IncludeEmojis == nil || *req.IncludeEmojis,
			GenerationMethod: consts.GenerationManual,
		},
	}
	if input.Metadata.Tone == "" {
		input.Metadata.Tone = consts.ToneCasual
	}
	if input.Metadata.Style == "" {
		input.Metadata.Style = consts.StyleMedium
	}
	if input.Metadata.Language == "" {
		input.Metadata.Language = "en"
	}

	created, err := s.captionSvc.CreateCaption(context.WithoutCancel(c.Request.Context()), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{
		"message":         "Caption saved successfully",
		"caption":         service.ToCaptionDTO(created.Caption),
		"countersUpdated": created.CounterErr == nil,
	})
}

// GetHistory 已登录时查询自己的历史，否则需要 userId 参数
func (s *CaptionHandler) GetHistory(c *gin.Context) {
	var req dto.HistoryQueryDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	uid := c.GetString(consts.CtxUID)
	if uid == "" {
		uid = strings.TrimSpace(req.UserID)
	}
	if uid == "" || uid == consts.AnonymousUserID {
		response.Error(c, fmt.Errorf("%w: userId is required", service.ErrParamInvalid))
		return
	}

	history, err := s.captionSvc.GetUserCaptions(c.Request.Context(), uid, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": history})
}

// GetTrending 窗口内无数据时返回占位列表
func (s *CaptionHandler) GetTrending(c *gin.Context) {
	var req dto.TrendingQueryDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	items, category, err := s.trendingSvc.GetTrending(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{"category": category}
	if len(items) == 0 {
		limit := int(req.Limit)
		if limit <= 0 {
			limit = s.cfg.Trending.DefaultLimit
		}
		if maxLimit := s.cfg.Trending.MaxLimit; maxLimit > 0 {
			limit = min(limit, maxLimit)
		}
		items = trendingPlaceholder(category, limit, time.Now())
		payload["note"] = placeholderNote
	}
	payload["data"] = items
	payload["count"] = len(items)
	response.Success(c, payload)
}

func (s *CaptionHandler) ToggleFavorite(c *gin.Context) {
	isFavorite, err := s.captionSvc.ToggleFavorite(context.WithoutCancel(c.Request.Context()), c.Param("id"), c.GetString(consts.CtxUID))
	if err != nil {
		response.Error(c, err)
		return
	}
	message := "Removed from favorites"
	if isFavorite {
		message = "Added to favorites"
	}
	response.Success(c, gin.H{
		"isFavorite": isFavorite,
		"message":    message,
	})
}

// DeleteCaption 未命中时仍返回 200，deleted 为 false
func (s *CaptionHandler) DeleteCaption(c *gin.Context) {
	n, err := s.captionSvc.DeleteCaption(context.WithoutCancel(c.Request.Context()), c.Param("id"), c.GetString(consts.CtxUID))
	if err != nil {
		response.Error(c, err)
		return
	}
	message := "Caption deleted successfully"
	if n == 0 {
		message = "No caption matched"
	}
	response.Success(c, gin.H{
		"deleted":      n > 0,
		"deletedCount": n,
		"message":      message,
	})
}

func (s *CaptionHandler) UpdateCaption(c *gin.Context) {
	var req dto.CaptionUpdateDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	caption, err := s.captionSvc.UpdateCaption(context.WithoutCancel(c.Request.Context()), c.Param("id"), c.GetString(consts.CtxUID), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"caption": caption})
}

func (s *CaptionHandler) RecordEngagement(c *gin.Context) {
	kind := c.Param("kind")
	// 点赞与分享参与热门排序，必须登录
	if (kind == consts.EngagementLike || kind == consts.EngagementShare) && c.GetString(consts.CtxUID) == "" {
		response.Error(c, service.ErrMissingToken)
		return
	}

	engagement, err := s.captionSvc.RecordEngagement(context.WithoutCancel(c.Request.Context()), c.Param("id"), kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"engagement": engagement})
}

// GetAnalytics 当前用户的文案统计
func (s *CaptionHandler) GetAnalytics(c *gin.Context) {
	analytics, err := s.statsSvc.GetCaptionAnalytics(c.Request.Context(), c.GetString(consts.CtxUID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"analytics": analytics})
}
