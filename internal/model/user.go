package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User 用户档案，uid 来自身份提供方
type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UID               string             `bson:"uid" json:"uid"`
	Email             string             `bson:"email,omitempty" json:"email"`
	DisplayName       string             `bson:"display_name" json:"displayName"`
	PhotoURL          string             `bson:"photo_url" json:"photoURL"`
	Bio               string             `bson:"bio" json:"bio"`
	Preferences       UserPreferences    `bson:"preferences" json:"preferences"`
	Subscription      Subscription       `bson:"subscription" json:"subscription"`
	CaptionsGenerated int64              `bson:"captions_generated" json:"captionsGenerated"`
	TotalLikes        int64              `bson:"total_likes" json:"totalLikes"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`
	LastActiveAt      time.Time          `bson:"last_active_at" json:"lastActiveAt"`
}

type UserPreferences struct {
	Theme         string            `bson:"theme" json:"theme"`
	Language      string            `bson:"language" json:"language"`
	DefaultTone   string            `bson:"default_tone" json:"defaultTone"`
	Notifications NotificationFlags `bson:"notifications" json:"notifications"`
}

type NotificationFlags struct {
	NewFeatures bool `bson:"new_features" json:"newFeatures"`
	Tips        bool `bson:"tips" json:"tips"`
	Marketing   bool `bson:"marketing" json:"marketing"`
}

type Subscription struct {
	Plan      string     `bson:"plan" json:"plan"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	Features  []string   `bson:"features" json:"features"`
}

// DefaultPreferences 新用户的偏好
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Theme:       "system",
		Language:    "en",
		DefaultTone: "casual",
		Notifications: NotificationFlags{
			NewFeatures: true,
			Tips:        true,
			Marketing:   false,
		},
	}
}

// DefaultSubscription 新用户的订阅
func DefaultSubscription() Subscription {
	return Subscription{
		Plan:     "free",
		Features: []string{"basic_captions", "history_access"},
	}
}
