package models

import "time"

// LeadStatus is a commercial pipeline stage (Pendiente, Cliente, Captado...),
// independent of the triage bucket. System rows are seeded at startup and
// cannot be edited or deleted.
type LeadStatus struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Color     string    `gorm:"default:#6B7280" json:"color"`
	Icon      string    `json:"icon"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsDefault bool      `gorm:"default:false" json:"is_default"`
	IsSystem  bool      `gorm:"default:false" json:"is_system"`
}
