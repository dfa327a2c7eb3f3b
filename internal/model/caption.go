package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Caption 已保存的文案
type Caption struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         string             `bson:"user_id" json:"userId"`
	Content        string             `bson:"content" json:"content"`
	OriginalPrompt string             `bson:"original_prompt" json:"originalPrompt"`
	Platform       string             `bson:"platform" json:"platform"`
	Category       string             `bson:"category,omitempty" json:"category,omitempty"`
	ImageURL       string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	ImageObject    string             `bson:"image_object,omitempty" json:"-"`
	Metadata       CaptionMetadata    `bson:"metadata" json:"metadata"`
	Engagement     CaptionEngagement  `bson:"engagement" json:"engagement"`
	Flags          CaptionFlags       `bson:"flags" json:"flags"`
	Tags           []string           `bson:"tags" json:"tags"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

type CaptionMetadata struct {
	Tone             string  `bson:"tone" json:"tone"`
	Style            string  `bson:"style" json:"style"`
	Language         string  `bson:"language" json:"language"`
	IncludeHashtags  bool    `bson:"include_hashtags" json:"includeHashtags"`
	IncludeEmojis    bool    `bson:"include_emojis" json:"includeEmojis"`
	ImageType        string  `bson:"image_type,omitempty" json:"imageType,omitempty"`
	ProcessingTime   int64   `bson:"processing_time" json:"processingTime"`
	GenerationMethod string  `bson:"generation_method" json:"generationMethod"`
	Model            string  `bson:"model" json:"model"`
	Confidence       float64 `bson:"confidence,omitempty" json:"confidence,omitempty"`
}

// CaptionEngagement 只通过 $inc 变化
type CaptionEngagement struct {
	Likes  int64 `bson:"likes" json:"likes"`
	Shares int64 `bson:"shares" json:"shares"`
	Copies int64 `bson:"copies" json:"copies"`
	Views  int64 `bson:"views" json:"views"`
}

// Score 热度分
func (e CaptionEngagement) Score() int64 {
	return e.Likes + e.Shares + e.Copies
}

type CaptionFlags struct {
	IsFavorite bool `bson:"is_favorite" json:"isFavorite"`
	IsPublic   bool `bson:"is_public" json:"isPublic"`
	IsReported bool `bson:"is_reported" json:"isReported"`
}
