package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrendingSnapshot 定时任务按分类落库的热榜
type TrendingSnapshot struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Category    string             `bson:"category" json:"category"`
	WindowDays  int                `bson:"window_days" json:"windowDays"`
	Items       []TrendingItem     `bson:"items" json:"items"`
	GeneratedAt time.Time          `bson:"generated_at" json:"generatedAt"`
}

type TrendingItem struct {
	CaptionID primitive.ObjectID `bson:"caption_id" json:"id"`
	Content   string             `bson:"content" json:"caption"`
	Tone      string             `bson:"tone" json:"tone"`
	Style     string             `bson:"style" json:"style"`
	Score     int64              `bson:"score" json:"engagementScore"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
