package dto

import "time"

// GenerateCaptionDTO analyze-image 的表单字段
type GenerateCaptionDTO struct {
	Platform        string `form:"platform" json:"platform"`
	Style           string `form:"style" json:"style"`
	Tone            string `form:"tone" json:"tone"`
	Language        string `form:"language" json:"language"`
	UserID          string `form:"userId" json:"userId"`
	Prompt          string `form:"prompt" json:"prompt" validate:"omitempty,max=1000"`
	Count           int    `form:"count" json:"count"`
	IncludeHashtags *bool  `form:"includeHashtags" json:"includeHashtags"`
	IncludeEmojis   *bool  `form:"includeEmojis" json:"includeEmojis"`
	ImageURL        string `form:"imageUrl" json:"imageUrl" validate:"omitempty,url"`
}

// CandidateDTO 一条候选文案
type CandidateDTO struct {
	ID        string               `json:"id"`
	Caption   string               `json:"caption"`
	Tags      []string             `json:"tags"`
	Platform  string               `json:"platform"`
	Style     string               `json:"style"`
	Tone      string               `json:"tone"`
	Metadata  CandidateMetadataDTO `json:"metadata"`
	Analysis  string               `json:"analysis"`
	CreatedAt time.Time            `json:"createdAt"`
	Saved     bool                 `json:"saved"`
	CaptionID string               `json:"captionId,omitempty"`
	SaveError string               `json:"saveError,omitempty"`
}

type CandidateMetadataDTO struct {
	Confidence     float64  `json:"confidence"`
	ProcessingTime int64    `json:"processingTime"`
	Model          string   `json:"model"`
	Emojis         []string `json:"emojis"`
	HashtagCount   int      `json:"hashtagCount"`
	CharacterCount int      `json:"characterCount"`
	WordCount      int      `json:"wordCount"`
}

type GenerateResultDTO struct {
	Captions    []string        `json:"captions"`
	Data        []*CandidateDTO `json:"data"`
	Count       int             `json:"count"`
	Style       string          `json:"style"`
	Tone        string          `json:"tone"`
	Platform    string          `json:"platform"`
	Enhanced    bool            `json:"enhanced"`
	GeneratedAt time.Time       `json:"generatedAt"`
}
