package llm

import (
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"strings"
)

var ErrEmptyResponse = errors.New("empty response from model")

const defaultCaptionPrompt = `Analyze this image and generate {{count}} creative {{tone}} captions for {{platform}}.
Tone: {{tone}}
Length: {{style}}
Language: {{language}}
{{hashtags}}
{{emojis}}
Write one caption per line. Make each caption unique and engaging.`

// CaptionRequest 一次增强请求
type CaptionRequest struct {
	Image           []byte
	MimeType        string
	Count           int
	Platform        string
	Tone            string
	Style           string
	Language        string
	IncludeHashtags bool
	IncludeEmojis   bool
	Hint            string
}

// GenerateCaptions 返回模型输出的非空行，过滤由调用方完成
func (c *CaptionClient) GenerateCaptions(ctx context.Context, req *CaptionRequest) ([]string, error) {
	instruction := c.renderPrompt(req)

	resp, err := c.fetchModelByImage(ctx, instruction, req.Image, req.MimeType)
	if err != nil {
		log.WarnContext(ctx, "AI大模型请求失败", "err", err)
		return nil, err
	}
	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return nil, ErrEmptyResponse
	}

	log.InfoContext(ctx, "AI大模型请求成功", "stop_reason", resp.Choices[0].StopReason)
	return splitLines(resp.Choices[0].Content), nil
}

func (c *CaptionClient) renderPrompt(req *CaptionRequest) string {
	hashtags := "Include relevant hashtags."
	if !req.IncludeHashtags {
		hashtags = "Do not use hashtags."
	}
	emojis := "Use emojis where appropriate."
	if !req.IncludeEmojis {
		emojis = "Do not use emojis."
	}

	prompt := strings.NewReplacer(
		"{{count}}", strconv.Itoa(req.Count),
		"{{platform}}", req.Platform,
		"{{tone}}", req.Tone,
		"{{style}}", req.Style,
		"{{language}}", req.Language,
		"{{hashtags}}", hashtags,
		"{{emojis}}", emojis,
	).Replace(c.prompt)

	if hint := strings.TrimSpace(req.Hint); hint != "" {
		prompt += "\nAdditional context from the user: " + hint
	}
	return prompt
}
