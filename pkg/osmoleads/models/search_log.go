package models

import "time"

// SearchLog records one executed search. The count of today's rows is the
// authoritative searches-today figure the quota tracker reads; the day
// rollover falls out of the timestamp comparison. KeywordText is kept so
// history stays readable after the keyword is deleted.
type SearchLog struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	RunID         string    `gorm:"index" json:"run_id"`
	CountryID     *uint     `gorm:"constraint:OnDelete:SET NULL" json:"country_id"`
	KeywordID     *uint     `gorm:"constraint:OnDelete:SET NULL" json:"keyword_id"`
	KeywordText   string    `json:"keyword_text"`
	ResultsCount  int       `gorm:"default:0" json:"results_count"`
	NewLeadsCount int       `gorm:"default:0" json:"new_leads_count"`
	IsSuccess     bool      `json:"is_success"`
	ErrorMessage  string    `json:"error_message"`
	SearchedAt    time.Time `gorm:"autoCreateTime;index" json:"searched_at"`
}
