package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnalyticsEvent 埋点事件，只追加
type AnalyticsEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"userId"`
	EventType string             `bson:"event_type" json:"eventType"`
	EventData map[string]any     `bson:"event_data,omitempty" json:"eventData,omitempty"`
	SessionID string             `bson:"session_id,omitempty" json:"sessionId,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	IPAddress string             `bson:"ip_address,omitempty" json:"ipAddress,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
