package service

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/api/dto"
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/llm"
	"InstaCap/internal/pkg/util"
	"context"
	"fmt"
	log "log/slog"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	saveErrorMessage   = "Failed to save to database"
	defaultAnalysis    = "AI-generated caption based on image analysis and style preferences"
	enhancedAnalysis   = "AI-enhanced caption based on actual image analysis"
	enhancedConfidence = 0.95
)

var numberedLine = regexp.MustCompile(`^\d+\.`)

// GenerationOptions 生成参数，由 ResolveOptions 补齐默认值
type GenerationOptions struct {
	Platform        string
	Tone            string
	Style           string
	Language        string
	Count           int
	IncludeHashtags bool
	IncludeEmojis   bool
}

// GenerateRequest 一次生成请求
type GenerateRequest struct {
	Options GenerationOptions
	Prompt  string
	Image   *util.UploadedImage
	UserID  string
}

// Enhancement 外部增强的结果，只有 Enhanced 和 Fallback 两种
type Enhancement interface {
	enhancement()
}

// Enhanced 外部模型返回的可用文案
type Enhanced struct {
	Lines []string
	Model string
}

// Fallback 保留模板文案的原因
type Fallback struct {
	Reason string
}

func (Enhanced) enhancement() {}
func (Fallback) enhancement() {}

// CaptionEnhancer 多模态文案生成
type CaptionEnhancer interface {
	GenerateCaptions(ctx context.Context, req *llm.CaptionRequest) ([]string, error)
	Model() string
}

// ImageStore 原图存储
type ImageStore interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

type GenerationService interface {
	Generate(ctx context.Context, req *GenerateRequest) (*dto.GenerateResultDTO, error)
}

type generationServiceImpl struct {
	captionSvc     CaptionService
	analyticsSvc   AnalyticsService
	enhancer       CaptionEnhancer
	images         ImageStore
	enhanceTimeout time.Duration
	maxImageSide   int
}

// NewGenerationService enhancer 与 images 可以为 nil
func NewGenerationService(
	captionSvc CaptionService,
	analyticsSvc AnalyticsService,
	enhancer CaptionEnhancer,
	images ImageStore,
	cfg *config.Config,
) GenerationService {
	timeout := time.Duration(cfg.Generation.EnhanceTimeout) * time.Second
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &generationServiceImpl{
		captionSvc:     captionSvc,
		analyticsSvc:   analyticsSvc,
		enhancer:       enhancer,
		images:         images,
		enhanceTimeout: timeout,
		maxImageSide:   cfg.LLM.MaxImageSide,
	}
}

// ResolveOptions style 为语气值时按语气处理，否则视为篇幅
func ResolveOptions(in *dto.GenerateCaptionDTO, cfg config.GenerationConfig) GenerationOptions {
	opts := GenerationOptions{
		Platform:        consts.PlatformInstagram,
		Tone:            consts.ToneCasual,
		Style:           consts.StyleMedium,
		Language:        "en",
		Count:           clampCount(in.Count, cfg),
		IncludeHashtags: true,
		IncludeEmojis:   true,
	}

	if p := normalizeEnum(in.Platform); slices.Contains(consts.Platforms, p) {
		opts.Platform = p
	}
	switch style := normalizeEnum(in.Style); {
	case slices.Contains(consts.Tones, style):
		opts.Tone = style
	case slices.Contains(consts.Styles, style):
		opts.Style = style
	}
	if t := normalizeEnum(in.Tone); slices.Contains(consts.Tones, t) {
		opts.Tone = t
	}
	if l := normalizeEnum(in.Language); slices.Contains(consts.Languages, l) {
		opts.Language = l
	}
	if in.IncludeHashtags != nil {
		opts.IncludeHashtags = *in.IncludeHashtags
	}
	if in.IncludeEmojis != nil {
		opts.IncludeEmojis = *in.IncludeEmojis
	}
	return opts
}

func normalizeEnum(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// clampCount 限制在 [min_count, max_count]，缺省取 default_count
func clampCount(n int, cfg config.GenerationConfig) int {
	lo, hi, def := cfg.MinCount, cfg.MaxCount, cfg.DefaultCount
	if lo <= 0 {
		lo = 3
	}
	if hi < lo {
		hi = max(lo, 6)
	}
	if def < lo || def > hi {
		def = lo
	}
	if n <= 0 {
		return def
	}
	return min(max(n, lo), hi)
}

// Generate RECEIVED -> CANDIDATES_BUILT -> ENHANCED? -> PERSISTED? -> RETURNED
func (s *generationServiceImpl) Generate(ctx context.Context, req *GenerateRequest) (*dto.GenerateResultDTO, error) {
	start := time.Now()
	opts := req.Options
	if opts.Count <= 0 {
		opts.Count = 3
	}

	texts := sampleTemplates(templatePool(opts.Tone, opts.Platform), opts.Count)
	enhancedAt := make([]bool, len(texts))
	modelName := consts.MockModelName

	switch o := s.enhance(ctx, req, opts).(type) {
	case Enhanced:
		for i, line := range o.Lines {
			if i >= len(texts) {
				break
			}
			texts[i] = line
			enhancedAt[i] = true
		}
		modelName = o.Model
		log.InfoContext(ctx, "captions enhanced", "lines", len(o.Lines), "model", o.Model)
	case Fallback:
		log.InfoContext(ctx, "caption enhancement skipped", "reason", o.Reason)
	}

	elapsed := time.Since(start).Milliseconds()
	now := time.Now()
	result := &dto.GenerateResultDTO{
		Captions:    make([]string, 0, len(texts)),
		Data:        make([]*dto.CandidateDTO, 0, len(texts)),
		Style:       opts.Style,
		Tone:        opts.Tone,
		Platform:    opts.Platform,
		GeneratedAt: now,
	}
	for i, text := range texts {
		text = applyToggles(text, opts)
		candidate := buildCandidate(text, i, opts, now)
		candidate.Metadata.ProcessingTime = elapsed
		candidate.Analysis = defaultAnalysis
		if p := strings.TrimSpace(req.Prompt); p != "" {
			candidate.Analysis = p
		}
		if enhancedAt[i] {
			candidate.Metadata.Model = modelName
			candidate.Metadata.Confidence = enhancedConfidence
			candidate.Analysis = enhancedAnalysis
			result.Enhanced = true
		}
		result.Captions = append(result.Captions, text)
		result.Data = append(result.Data, candidate)
	}
	result.Count = len(result.Data)

	if isRealUser(req.UserID) && len(result.Data) > 0 {
		s.persistFirst(ctx, req, opts, result.Data[0], enhancedAt[0])
		s.analyticsSvc.Record(ctx, req.UserID, consts.EventCaptionGenerated, map[string]any{
			"count":    result.Count,
			"platform": opts.Platform,
			"tone":     opts.Tone,
			"style":    opts.Style,
			"enhanced": result.Enhanced,
			"hasImage": req.Image != nil,
		})
	}
	return result, nil
}

func isRealUser(uid string) bool {
	uid = strings.TrimSpace(uid)
	return uid != "" && uid != consts.AnonymousUserID
}

// enhance 外部调用的任何失败都返回 Fallback
func (s *generationServiceImpl) enhance(ctx context.Context, req *GenerateRequest, opts GenerationOptions) Enhancement {
	if s.enhancer == nil {
		return Fallback{Reason: "text generation not configured"}
	}
	if req.Image == nil || len(req.Image.Data) == 0 {
		return Fallback{Reason: "no image provided"}
	}

	img, err := util.DownscaleImage(req.Image, s.maxImageSide)
	if err != nil {
		log.WarnContext(ctx, "image downscale failed, sending original", "err", err)
		img = req.Image
	}

	ctx, cancel := context.WithTimeout(ctx, s.enhanceTimeout)
	defer cancel()

	lines, err := s.enhancer.GenerateCaptions(ctx, &llm.CaptionRequest{
		Image:           img.Data,
		MimeType:        img.MimeType,
		Count:           opts.Count,
		Platform:        opts.Platform,
		Tone:            opts.Tone,
		Style:           opts.Style,
		Language:        opts.Language,
		IncludeHashtags: opts.IncludeHashtags,
		IncludeEmojis:   opts.IncludeEmojis,
		Hint:            req.Prompt,
	})
	if err != nil {
		return Fallback{Reason: err.Error()}
	}

	usable := usableLines(lines, opts.Count)
	if len(usable) == 0 {
		return Fallback{Reason: "no usable lines in response"}
	}
	return Enhanced{Lines: usable, Model: s.enhancer.Model()}
}

// usableLines 去掉空行和编号行，最多取 count 条
func usableLines(lines []string, count int) []string {
	out := make([]string, 0, count)
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || numberedLine.MatchString(l) {
			continue
		}
		out = append(out, l)
		if len(out) == count {
			break
		}
	}
	return out
}

func applyToggles(text string, opts GenerationOptions) string {
	out := text
	if !opts.IncludeHashtags {
		out = util.StripHashtags(out)
	}
	if !opts.IncludeEmojis {
		out = util.StripEmojis(out)
	}
	if strings.TrimSpace(out) == "" {
		return text
	}
	return out
}

// buildCandidate 派生字段都由最终文本计算
func buildCandidate(text string, index int, opts GenerationOptions, now time.Time) *dto.CandidateDTO {
	hashtags := util.ExtractHashtags(text)
	tags := make([]string, 0, len(hashtags))
	for _, h := range hashtags {
		tags = append(tags, strings.TrimPrefix(h, "#"))
	}
	return &dto.CandidateDTO{
		ID:       uuid.NewString(),
		Caption:  text,
		Tags:     tags,
		Platform: opts.Platform,
		Style:    opts.Style,
		Tone:     opts.Tone,
		Metadata: dto.CandidateMetadataDTO{
			Confidence:     candidateConfidence(index),
			Model:          consts.MockModelName,
			Emojis:         util.ExtractEmojis(text),
			HashtagCount:   len(hashtags),
			CharacterCount: util.CharCount(text),
			WordCount:      util.WordCount(text),
		},
		CreatedAt: now,
	}
}

// candidateConfidence 排名越靠后越低，不低于 0.85
func candidateConfidence(index int) float64 {
	c := math.Max(0.85, 0.98-0.02*float64(index))
	return math.Round(c*100) / 100
}

// persistFirst 只保存第一条，失败体现在 saved/saveError 上
func (s *generationServiceImpl) persistFirst(ctx context.Context, req *GenerateRequest, opts GenerationOptions, first *dto.CandidateDTO, enhanced bool) {
	input := &CaptionInput{
		UserID:         req.UserID,
		Content:        first.Caption,
		OriginalPrompt: req.Prompt,
		Platform:       opts.Platform,
		Category:       opts.Tone,
		Tags:           first.Tags,
		Metadata: model.CaptionMetadata{
			Tone:             opts.Tone,
			Style:            opts.Style,
			Language:         opts.Language,
			IncludeHashtags:  opts.IncludeHashtags,
			IncludeEmojis:    opts.IncludeEmojis,
			ProcessingTime:   first.Metadata.ProcessingTime,
			GenerationMethod: consts.GenerationMock,
			Model:            first.Metadata.Model,
			Confidence:       first.Metadata.Confidence,
		},
	}
	if enhanced {
		input.Metadata.GenerationMethod = consts.GenerationEnhanced
	}
	if req.Image != nil {
		input.Metadata.ImageType = req.Image.MimeType
		input.ImageObject, input.ImageURL = s.storeImage(ctx, req.UserID, req.Image)
	}

	created, err := s.captionSvc.CreateCaption(ctx, input)
	if err != nil {
		log.WarnContext(ctx, "failed to save generated caption", "uid", req.UserID, "err", err)
		first.Saved = false
		first.SaveError = saveErrorMessage
		return
	}
	first.Saved = true
	first.CaptionID = created.Caption.ID.Hex()
}

// storeImage 对象存储未启用或上传失败时返回空
func (s *generationServiceImpl) storeImage(ctx context.Context, uid string, img *util.UploadedImage) (string, string) {
	if s.images == nil || len(img.Data) == 0 {
		return "", ""
	}
	objectName := fmt.Sprintf("captions/%s/%s%s", uid, uuid.NewString(), img.Ext)
	url, err := s.images.Put(ctx, objectName, img.Data, img.MimeType)
	if err != nil {
		log.WarnContext(ctx, "failed to store source image", "uid", uid, "err", err)
		return "", ""
	}
	return objectName, url
}
