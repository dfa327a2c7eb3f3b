package llm

import (
	"context"
	log "log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

func readPrompt(file string) string {
	if file == "" {
		return ""
	}
	data, err := os.ReadFile(file)
	if err != nil {
		log.Warn("读取prompt文件失败，使用内置prompt", "file", file, "err", err)
		return ""
	}
	return string(data)
}

// fetchModelByImage 图片与指令一起发给视觉模型
func (c *CaptionClient) fetchModelByImage(ctx context.Context, instruction string, image []byte, mimeType string) (*llms.ContentResponse, error) {
	if err := ImageSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer ImageSem.Release(1)

	messages := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(instruction),
				llms.BinaryPart(mimeType, image),
			},
		},
	}

	opts := []llms.CallOption{
		llms.WithModel(c.cfg.VisionModel),
		llms.WithTemperature(c.cfg.Temperature),
	}
	if c.cfg.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.cfg.MaxTokens))
	}

	log.InfoContext(ctx, "正在请求AI大模型", "model", c.cfg.VisionModel, "image_bytes", len(image))
	return c.model.GenerateContent(ctx, messages, opts...)
}

var fencePattern = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")

// splitLines 去掉代码块标记后按行切分
func splitLines(content string) []string {
	content = fencePattern.ReplaceAllString(content, "")
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
