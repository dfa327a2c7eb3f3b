package llm

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/pkg/logger"
	log "log/slog"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// CaptionClient 多模态文案生成
type CaptionClient struct {
	model  llms.Model
	cfg    config.LLMConfig
	prompt string
}

// NewCaptionClient 未配置 api_key 时返回 nil，调用方走模板兜底
func NewCaptionClient(cfg config.LLMConfig) (*CaptionClient, error) {
	if !cfg.Enabled() {
		log.Info("LLM api_key not configured, caption enhancement disabled")
		return nil, nil
	}

	opts := []openai.Option{
		openai.WithModel(cfg.VisionModel),
		openai.WithToken(cfg.ApiKey),
		openai.WithHTTPClient(&http.Client{
			Transport: logger.NewHTTPTransport("llm", 5*time.Second),
		}),
	}
	if cfg.URL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.URL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		log.Error("AI大模型初始化失败", "err", err)
		return nil, err
	}

	return NewCaptionClientWithModel(model, cfg), nil
}

// NewCaptionClientWithModel 注入任意 llms.Model
func NewCaptionClientWithModel(model llms.Model, cfg config.LLMConfig) *CaptionClient {
	prompt := readPrompt(cfg.CaptionPrompt)
	if prompt == "" {
		prompt = defaultCaptionPrompt
	}
	return &CaptionClient{model: model, cfg: cfg, prompt: prompt}
}

// Model 当前使用的模型名
func (c *CaptionClient) Model() string {
	return c.cfg.VisionModel
}
