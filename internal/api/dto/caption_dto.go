package dto

import "time"

// CaptionCreateDTO 直接保存一条文案
type CaptionCreateDTO struct {
	Content         string   `json:"content" validate:"required"`
	OriginalPrompt  string   `json:"originalPrompt" validate:"omitempty,max=1000"`
	Platform        string   `json:"platform" validate:"omitempty,oneof=instagram facebook twitter linkedin"`
	Tone            string   `json:"tone" validate:"omitempty,oneof=casual professional funny inspirational trendy"`
	Style           string   `json:"style" validate:"omitempty,oneof=short medium long"`
	Language        string   `json:"language" validate:"omitempty,oneof=en es fr de it pt"`
	Category        string   `json:"category" validate:"omitempty,max=50"`
	IncludeHashtags *bool    `json:"includeHashtags"`
	IncludeEmojis   *bool    `json:"includeEmojis"`
	ImageURL        string   `json:"imageUrl" validate:"omitempty,url"`
	Tags            []string `json:"tags" validate:"omitempty,max=30,dive,max=100"`
	IsPublic        *bool    `json:"isPublic"`
}

// CaptionUpdateDTO 部分更新
type CaptionUpdateDTO struct {
	Content  *string  `json:"content" validate:"omitempty,min=1"`
	Tags     []string `json:"tags" validate:"omitempty,max=30,dive,max=100"`
	IsPublic *bool    `json:"isPublic"`
}

type HistoryQueryDTO struct {
	Page      int64  `form:"page" validate:"omitempty,min=1"`
	Limit     int64  `form:"limit" validate:"omitempty,min=1"`
	Search    string `form:"search" validate:"omitempty,max=200"`
	Category  string `form:"category" validate:"omitempty,max=50"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=createdAt updatedAt likes shares copies views"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
	UserID    string `form:"userId"`
}

type CaptionDTO struct {
	ID             string             `json:"id"`
	UserID         string             `json:"userId"`
	Content        string             `json:"content"`
	OriginalPrompt string             `json:"originalPrompt"`
	Platform       string             `json:"platform"`
	Category       string             `json:"category,omitempty"`
	ImageURL       string             `json:"imageUrl,omitempty"`
	Metadata       CaptionMetadataDTO `json:"metadata"`
	Engagement     EngagementDTO      `json:"engagement"`
	IsFavorite     bool               `json:"isFavorite"`
	IsPublic       bool               `json:"isPublic"`
	Tags           []string           `json:"tags"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

type CaptionMetadataDTO struct {
	Tone             string  `json:"tone"`
	Style            string  `json:"style"`
	Language         string  `json:"language"`
	IncludeHashtags  bool    `json:"includeHashtags"`
	IncludeEmojis    bool    `json:"includeEmojis"`
	ImageType        string  `json:"imageType,omitempty"`
	ProcessingTime   int64   `json:"processingTime"`
	GenerationMethod string  `json:"generationMethod"`
	Model            string  `json:"model"`
	Confidence       float64 `json:"confidence,omitempty"`
}

type EngagementDTO struct {
	Likes  int64 `json:"likes"`
	Shares int64 `json:"shares"`
	Copies int64 `json:"copies"`
	Views  int64 `json:"views"`
}

// HistoryDTO 分页结果
type HistoryDTO struct {
	Captions   []*CaptionDTO `json:"captions"`
	Total      int64         `json:"total"`
	Page       int64         `json:"page"`
	Limit      int64         `json:"limit"`
	TotalPages int64         `json:"totalPages"`
	HasMore    bool          `json:"hasMore"`
	HasPrev    bool          `json:"hasPrev"`
}

// CaptionAnalyticsDTO 当前用户的文案统计摘要
type CaptionAnalyticsDTO struct {
	TotalCaptions    int64            `json:"totalCaptions"`
	FavoriteCaptions int64            `json:"favoriteCaptions"`
	MonthlyStats     any              `json:"monthlyStats"`
	TopCategories    []*CategoryCount `json:"topCategories"`
	Preferences      any              `json:"preferences"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
