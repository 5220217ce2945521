// Package triage owns the lead bucket state machine: which bucket a lead
// occupies, which transitions are legal, and the per-bucket counts derived
// from the lead set. It performs no retries and holds no state of its own;
// every operation is a single transaction against the store.
package triage

import (
	"errors"
	"strings"
	"time"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the referenced lead or status does not exist
	ErrNotFound = errors.New("lead not found")
	// ErrInvalidBucket means the target is not a legal bucket literal for a move
	ErrInvalidBucket = errors.New("invalid bucket")
	// ErrInvalidTransition means the move would not change anything
	// (same bucket, or discarding an already discarded lead)
	ErrInvalidTransition = errors.New("invalid bucket transition")
)

// Engine applies bucket transitions and computes bucket stats
type Engine struct {
	db *gorm.DB
}

// NewEngine creates a triage engine over the given store
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Filters narrows ListByBucket results. Search matches name, domain, url
// and email case-insensitively as substrings.
type Filters struct {
	KeywordID *uint
	StatusID  *uint
	Search    string
	Limit     int
	Offset    int
}

// MoveLead moves a lead to a different bucket. The target must be a valid
// bucket other than "new" and must differ from the current bucket. The
// first move out of "new" marks the lead reviewed; no other field changes.
func (e *Engine) MoveLead(leadID uint, target models.Bucket) (*models.Lead, error) {
	if !target.Valid() || target == models.BucketNew {
		return nil, ErrInvalidBucket
	}

	var lead models.Lead
	if err := e.db.First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if lead.Bucket == target {
		return nil, ErrInvalidTransition
	}

	updates := map[string]interface{}{"bucket": target}
	if !lead.IsReviewed {
		now := time.Now().UTC()
		updates["is_reviewed"] = true
		updates["reviewed_at"] = now
		lead.IsReviewed = true
		lead.ReviewedAt = &now
	}

	if err := e.db.Model(&lead).Updates(updates).Error; err != nil {
		return nil, err
	}
	lead.Bucket = target

	return &lead, nil
}

// DiscardLead moves a lead to the discarded bucket and records the reason
// in the audit trail, so the domain is recognized and skipped if a later
// search surfaces it again.
func (e *Engine) DiscardLead(leadID uint, reason string) (*models.Lead, error) {
	var lead models.Lead
	if err := e.db.First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if lead.Bucket == models.BucketDiscarded {
		return nil, ErrInvalidTransition
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		moved, err := NewEngine(tx).MoveLead(leadID, models.BucketDiscarded)
		if err != nil {
			return err
		}
		lead = *moved

		record := models.DiscardRecord{
			LeadID:    lead.ID,
			CountryID: lead.CountryID,
			Domain:    lead.Domain,
			URL:       lead.URL,
			Reason:    reason,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, err
	}

	return &lead, nil
}

// ListByBucket returns a country's leads in one bucket, newest first.
// Pure read, no side effects.
func (e *Engine) ListByBucket(countryID uint, bucket models.Bucket, f Filters) ([]models.Lead, error) {
	if !bucket.Valid() {
		return nil, ErrInvalidBucket
	}

	query := e.db.Preload("Status").
		Where("country_id = ? AND bucket = ?", countryID, bucket).
		Order("found_at DESC")

	if f.KeywordID != nil {
		query = query.Where("keyword_id = ?", *f.KeywordID)
	}
	if f.StatusID != nil {
		query = query.Where("status_id = ?", *f.StatusID)
	}
	if f.Search != "" {
		term := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(domain) LIKE ? OR LOWER(url) LIKE ? OR LOWER(email) LIKE ?",
			term, term, term, term,
		)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var leads []models.Lead
	if err := query.Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// SetStatus updates the commercial-pipeline axis only. A nil statusID
// unsets it. Always legal regardless of bucket.
func (e *Engine) SetStatus(leadID uint, statusID *uint) (*models.Lead, error) {
	var lead models.Lead
	if err := e.db.First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if statusID != nil {
		var status models.LeadStatus
		if err := e.db.First(&status, *statusID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	if err := e.db.Model(&lead).Update("status_id", statusID).Error; err != nil {
		return nil, err
	}
	lead.StatusID = statusID

	return &lead, nil
}

// ComputeStats returns the per-bucket lead count for a country. The counts
// partition the country's lead set: their sum always equals the total.
func (e *Engine) ComputeStats(countryID uint) (map[models.Bucket]int64, error) {
	stats := make(map[models.Bucket]int64, len(models.AllBuckets()))
	for _, bucket := range models.AllBuckets() {
		var count int64
		if err := e.db.Model(&models.Lead{}).
			Where("country_id = ? AND bucket = ?", countryID, bucket).
			Count(&count).Error; err != nil {
			return nil, err
		}
		stats[bucket] = count
	}
	return stats, nil
}
