package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	hashtagRegex = regexp.MustCompile(`#(\w+)`)
	emojiRegex   = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F900}-\x{1F9FF}\x{1F1E0}-\x{1F1FF}\x{2600}-\x{26FF}\x{2700}-\x{27BF}]`)
	// 变体选择符、零宽连接符、肤色修饰
	emojiJoinerRegex = regexp.MustCompile(`[\x{FE0F}\x{200D}\x{1F3FB}-\x{1F3FF}\x{2640}\x{2642}]`)
	spaceRegex       = regexp.MustCompile(`[ \t]{2,}`)
)

// ExtractHashtags 提取 #word，保留 # 前缀，按出现顺序
func ExtractHashtags(text string) []string {
	matches := hashtagRegex.FindAllString(text, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}

// ExtractTags 去掉 # 的去重标签
func ExtractTags(text string) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, m := range hashtagRegex.FindAllStringSubmatch(text, -1) {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// ExtractEmojis 提取 emoji 字符
func ExtractEmojis(text string) []string {
	matches := emojiRegex.FindAllString(text, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}

// StripHashtags 去掉所有 #word
func StripHashtags(text string) string {
	return tidy(hashtagRegex.ReplaceAllString(text, ""))
}

// StripEmojis 去掉 emoji 及其修饰符
func StripEmojis(text string) string {
	text = emojiRegex.ReplaceAllString(text, "")
	return tidy(emojiJoinerRegex.ReplaceAllString(text, ""))
}

func tidy(text string) string {
	return strings.TrimSpace(spaceRegex.ReplaceAllString(text, " "))
}

// CharCount 按 rune 计数
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

// WordCount 按空白切分计数
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Ptr 取地址
func Ptr[T any](v T) *T {
	return &v
}
