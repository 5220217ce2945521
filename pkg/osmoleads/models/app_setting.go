package models

import "time"

// Setting keys
const (
	SettingMaxSearches = "max_searches"
)

// AppSetting is a key/value configuration row (max_searches etc.)
type AppSetting struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UpdatedAt   time.Time `json:"updated_at"`
	Key         string    `gorm:"uniqueIndex;not null" json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
}
