package dto

import "time"

// ProfileUpdateDTO nil 表示不修改
type ProfileUpdateDTO struct {
	DisplayName *string               `json:"displayName" validate:"omitempty,min=1,max=50"`
	PhotoURL    *string               `json:"photoURL" validate:"omitempty,url"`
	Bio         *string               `json:"bio" validate:"omitempty,max=500"`
	Preferences *PreferencesUpdateDTO `json:"preferences"`
}

type PreferencesUpdateDTO struct {
	Theme         *string                `json:"theme" validate:"omitempty,oneof=light dark system"`
	Language      *string                `json:"language" validate:"omitempty,oneof=en es fr de it pt"`
	DefaultTone   *string                `json:"defaultTone" validate:"omitempty,oneof=casual professional funny inspirational trendy"`
	Notifications *NotificationUpdateDTO `json:"notifications"`
}

type NotificationUpdateDTO struct {
	NewFeatures *bool `json:"newFeatures"`
	Tips        *bool `json:"tips"`
	Marketing   *bool `json:"marketing"`
}

// UserStatsDTO 统计 + 聚合补充
type UserStatsDTO struct {
	Stats          any              `json:"stats"`
	TotalCaptions  int64            `json:"totalCaptions"`
	RecentCaptions int64            `json:"recentCaptions"`
	TopTones       []*CategoryCount `json:"topTones"`
}

type ActivityDayDTO struct {
	Date   string   `json:"date"`
	Count  int64    `json:"count"`
	Tones  []string `json:"tones"`
	Styles []string `json:"styles"`
}

type ActivityDTO struct {
	Days     int               `json:"days"`
	Since    time.Time         `json:"since"`
	Total    int64             `json:"total"`
	Activity []*ActivityDayDTO `json:"activity"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" form:"newPassword" validate:"required,min=6,max=128"`
}

// UserExportDTO 用户数据导出
type UserExportDTO struct {
	Profile     any           `json:"profile"`
	Preferences any           `json:"preferences"`
	Captions    []*CaptionDTO `json:"captions"`
	Statistics  any           `json:"statistics"`
	Truncated   bool          `json:"truncated"`
	ExportedAt  time.Time     `json:"exportedAt"`
}

// DeleteAccountDTO 级联删除结果
type DeleteAccountDTO struct {
	CaptionsDeleted int64 `json:"captionsDeleted"`
	StatsDeleted    int64 `json:"statsDeleted"`
	ProfileDeleted  int64 `json:"profileDeleted"`
}
