package models

import "time"

// Country represents a market where keyword searches run (Spain, France...)
type Country struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Code      string    `gorm:"not null" json:"code"`     // ES, FR, PT...
	Language  string    `gorm:"not null" json:"language"` // es, fr, pt...
	FlagImage string    `json:"flag_image"`               // data URL, optional
	IsActive  bool      `json:"is_active"`

	// Relationships
	Keywords []Keyword `gorm:"constraint:OnDelete:CASCADE" json:"keywords,omitempty"`
	Leads    []Lead    `gorm:"constraint:OnDelete:CASCADE" json:"leads,omitempty"`
}
