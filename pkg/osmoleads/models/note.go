package models

import "time"

// Note is an operator annotation on a lead, append-only
type Note struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LeadID    uint      `gorm:"not null;index" json:"lead_id"`
	Content   string    `gorm:"not null" json:"content"`
}
