package models

import "time"

// DiscardRecord is the audit trail written when a lead is discarded. The
// search pipeline checks it so a discarded domain re-surfaced by Google is
// not recreated as a new lead.
type DiscardRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	LeadID      uint      `gorm:"not null;index" json:"lead_id"`
	CountryID   uint      `gorm:"not null;index" json:"country_id"`
	Domain      string    `gorm:"not null;index" json:"domain"`
	URL         string    `json:"url"`
	Reason      string    `json:"reason"`
	DiscardedAt time.Time `gorm:"autoCreateTime" json:"discarded_at"`
}
