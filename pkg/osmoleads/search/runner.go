package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/quota"
	"github.com/google/uuid"
)

// pause between consecutive searches, to stay polite with the API
const searchInterval = time.Second

// RunCountry searches every active keyword of one country, or only the
// given keyword ids. The run stops early when the quota is exhausted.
func (s *Service) RunCountry(ctx context.Context, country *models.Country, keywordIDs []uint) (*RunStats, error) {
	stats := &RunStats{RunID: uuid.NewString(), Errors: []string{}}

	query := s.db.Where("country_id = ? AND is_active = ?", country.ID, true)
	if len(keywordIDs) > 0 {
		query = query.Where("id IN ?", keywordIDs)
	}

	var keywords []models.Keyword
	if err := query.Find(&keywords).Error; err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return nil, ErrNoActiveKeywords
	}

	stats.CountriesProcessed = 1
	s.runKeywords(ctx, stats, country, keywords)
	return stats, nil
}

// RunAll searches every active keyword of every active country, in country
// order, until done or out of quota.
func (s *Service) RunAll(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{RunID: uuid.NewString(), Errors: []string{}}

	var countries []models.Country
	if err := s.db.Where("is_active = ?", true).Order("name").Find(&countries).Error; err != nil {
		return nil, err
	}
	if len(countries) == 0 {
		return nil, ErrNoActiveCountries
	}

	for i := range countries {
		country := &countries[i]
		log.Printf("Searching country %s (%s)", country.Name, country.Code)
		stats.CountriesProcessed++

		var keywords []models.Keyword
		if err := s.db.Where("country_id = ? AND is_active = ?", country.ID, true).Find(&keywords).Error; err != nil {
			stats.Errors = append(stats.Errors, err.Error())
			continue
		}

		s.runKeywords(ctx, stats, country, keywords)

		if ok, err := s.tracker.CanSearch(); err != nil || !ok {
			break
		}
	}

	return stats, nil
}

func (s *Service) runKeywords(ctx context.Context, stats *RunStats, country *models.Country, keywords []models.Keyword) {
	for i := range keywords {
		keyword := &keywords[i]

		result, err := s.Search(ctx, stats.RunID, keyword, country)
		if err != nil {
			if errors.Is(err, quota.ErrQuotaExceeded) {
				stats.Errors = append(stats.Errors, err.Error())
				return
			}
			stats.KeywordsProcessed++
			stats.SearchesUsed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", keyword.Text, err))
			continue
		}

		stats.KeywordsProcessed++
		stats.SearchesUsed++
		stats.TotalResults += result.TotalResults
		stats.NewLeads += result.NewLeads

		if i < len(keywords)-1 {
			select {
			case <-ctx.Done():
				stats.Errors = append(stats.Errors, ctx.Err().Error())
				return
			case <-time.After(searchInterval):
			}
		}
	}
}
