package dto

type AnalyticsEventDTO struct {
	EventType string         `json:"eventType" validate:"required,max=64"`
	EventData map[string]any `json:"eventData"`
	SessionID string         `json:"sessionId" validate:"omitempty,max=128"`
}

type AnalyticsQueryDTO struct {
	Range     string `form:"range" validate:"omitempty,oneof=1d 7d 30d"`
	EventType string `form:"eventType" validate:"omitempty,max=64"`
	Limit     int64  `form:"limit" validate:"omitempty,min=1,max=500"`
}
