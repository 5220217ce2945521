package models

import "time"

// Marketplace is a domain classified automatically into the marketplace
// bucket at discovery time (amazon.es, leroymerlin.es...)
type Marketplace struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Domain    string    `gorm:"uniqueIndex;not null" json:"domain"`
	Name      string    `json:"name"`
	IsSystem  bool      `gorm:"default:false" json:"is_system"`
}
