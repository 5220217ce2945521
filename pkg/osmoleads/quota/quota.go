// Package quota gates search execution on a daily ceiling. The count of
// today's search log rows is the authoritative searches-today figure;
// nothing here caches it, so the day rollover needs no timer.
package quota

import (
	"errors"
	"strconv"
	"time"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"gorm.io/gorm"
)

// ErrQuotaExceeded means no searches remain for today
var ErrQuotaExceeded = errors.New("daily search quota exceeded")

// Unlimited is the Remaining value when max_searches is 0
const Unlimited = -1

// Tracker reads the search ceiling and the day's usage from the store
type Tracker struct {
	db         *gorm.DB
	defaultMax int
}

// NewTracker creates a quota tracker. defaultMax applies when no
// max_searches setting row exists.
func NewTracker(db *gorm.DB, defaultMax int) *Tracker {
	return &Tracker{db: db, defaultMax: defaultMax}
}

// MaxSearches returns the configured daily ceiling, 0 meaning unlimited
func (t *Tracker) MaxSearches() int {
	var setting models.AppSetting
	if err := t.db.Where("key = ?", models.SettingMaxSearches).First(&setting).Error; err != nil {
		return t.defaultMax
	}
	max, err := strconv.Atoi(setting.Value)
	if err != nil || max < 0 {
		return t.defaultMax
	}
	return max
}

// SearchesToday counts searches logged since local midnight
func (t *Tracker) SearchesToday() (int, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	if err := t.db.Model(&models.SearchLog{}).
		Where("searched_at >= ?", midnight).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// Remaining returns the searches left today, Unlimited (-1) when no
// ceiling is configured, never negative otherwise.
func (t *Tracker) Remaining() (int, error) {
	max := t.MaxSearches()
	if max == 0 {
		return Unlimited, nil
	}
	today, err := t.SearchesToday()
	if err != nil {
		return 0, err
	}
	if today >= max {
		return 0, nil
	}
	return max - today, nil
}

// CanSearch reports whether another search may start today
func (t *Tracker) CanSearch() (bool, error) {
	remaining, err := t.Remaining()
	if err != nil {
		return false, err
	}
	return remaining == Unlimited || remaining > 0, nil
}
