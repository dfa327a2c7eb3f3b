package dto

import "time"

type TrendingQueryDTO struct {
	Category string `form:"category" validate:"omitempty,max=50"`
	Limit    int64  `form:"limit" validate:"omitempty,min=1"`
}

type TrendingItemDTO struct {
	ID              string    `json:"id"`
	Caption         string    `json:"caption"`
	Tone            string    `json:"tone"`
	Style           string    `json:"style"`
	EngagementScore int64     `json:"engagementScore"`
	CreatedAt       time.Time `json:"createdAt"`
	Category        string    `json:"category"`
}
