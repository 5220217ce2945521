package models

import "time"

// Suggestion is a candidate keyword produced by analyzing saved lead
// websites. IsAdded and IsIgnored are terminal and mutually exclusive;
// once either is set the suggestion leaves the actionable list.
type Suggestion struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	CountryID     uint      `gorm:"not null;index" json:"country_id"`
	Text          string    `gorm:"not null" json:"text"`
	Source        string    `json:"source"` // meta, content
	Frequency     int       `gorm:"default:1" json:"frequency"`
	WebsitesCount int       `gorm:"default:1" json:"websites_count"`
	IsAdded       bool      `gorm:"default:false" json:"is_added"`
	IsIgnored     bool      `gorm:"default:false" json:"is_ignored"`
}
