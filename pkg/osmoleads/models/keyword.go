package models

import "time"

// Keyword is a search term tracked for a country. TotalSearches and
// TotalResults are monotonic accumulators owned by the search pipeline;
// toggling IsActive never resets them.
type Keyword struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CountryID        uint       `gorm:"not null;uniqueIndex:idx_keywords_country_text" json:"country_id"`
	Text             string     `gorm:"not null;uniqueIndex:idx_keywords_country_text" json:"text"`
	Category         string     `json:"category"` // producto, competencia, general, sugerida
	ResultsPerSearch int        `gorm:"default:5" json:"results_per_search"`
	IsActive         bool       `json:"is_active"`
	TotalSearches    int        `gorm:"default:0" json:"total_searches"`
	TotalResults     int        `gorm:"default:0" json:"total_results"`
	LastSearchAt     *time.Time `json:"last_search_at"`
}
