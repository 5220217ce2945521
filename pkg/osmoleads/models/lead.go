package models

import "time"

// Bucket is the triage classification of a lead. Every lead sits in exactly
// one bucket; BucketNew is only reachable at creation time.
type Bucket string

const (
	BucketNew         Bucket = "new"
	BucketLeads       Bucket = "leads"
	BucketDoubts      Bucket = "doubts"
	BucketDiscarded   Bucket = "discarded"
	BucketMarketplace Bucket = "marketplace"
)

// AllBuckets returns every bucket, in display order.
func AllBuckets() []Bucket {
	return []Bucket{BucketNew, BucketLeads, BucketDoubts, BucketDiscarded, BucketMarketplace}
}

// Valid reports whether b is a known bucket literal.
func (b Bucket) Valid() bool {
	switch b {
	case BucketNew, BucketLeads, BucketDoubts, BucketDiscarded, BucketMarketplace:
		return true
	}
	return false
}

// Lead is a company discovered by a keyword search. Bucket (triage) and
// StatusID (commercial pipeline) are independent axes. KeywordText is a
// denormalized copy of the discovering keyword so the label survives
// keyword deletion.
type Lead struct {
	ID        uint  `gorm:"primarykey" json:"id"`
	CountryID uint  `gorm:"not null;index" json:"country_id"`
	KeywordID *uint `gorm:"constraint:OnDelete:SET NULL" json:"keyword_id"`
	StatusID  *uint `gorm:"constraint:OnDelete:SET NULL" json:"status_id"`

	Name        string `gorm:"not null" json:"name"` // search result title
	URL         string `gorm:"not null" json:"url"`
	Domain      string `gorm:"not null;index" json:"domain"`
	Snippet     string `json:"snippet"`
	KeywordText string `json:"keyword_text"`

	// Contact info, filled by extraction
	Email string `json:"email"`
	Phone string `json:"phone"`
	CIF   string `gorm:"column:cif" json:"cif"`

	Bucket     Bucket     `gorm:"not null;index;default:new" json:"bucket"`
	IsReviewed bool       `gorm:"default:false" json:"is_reviewed"`
	ReviewedAt *time.Time `json:"reviewed_at"`

	FoundAt            time.Time  `gorm:"autoCreateTime" json:"found_at"`
	ContactExtracted   bool       `gorm:"default:false" json:"contact_extracted"`
	ContactExtractedAt *time.Time `json:"contact_extracted_at"`

	// Relationships
	Status *LeadStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Notes  []Note      `gorm:"constraint:OnDelete:CASCADE" json:"notes,omitempty"`
}
