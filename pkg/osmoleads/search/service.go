package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/config"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/quota"
	"gorm.io/gorm"
)

const customSearchURL = "https://www.googleapis.com/customsearch/v1"

// ErrUpstream wraps Google Custom Search transport and status failures
var ErrUpstream = errors.New("search backend failure")

// subdomain prefixes stripped when normalizing a result host to its domain
var strippedPrefixes = []string{"www.", "shop.", "tienda.", "store.", "blog.", "m."}

// Service executes keyword searches and converts results into leads
type Service struct {
	db      *gorm.DB
	cfg     *config.Config
	tracker *quota.Tracker
	client  *http.Client
}

// NewService creates a search service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:      db,
		cfg:     cfg,
		tracker: quota.NewTracker(db, cfg.MaxSearchesDefault),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Tracker exposes the quota tracker the service records against
func (s *Service) Tracker() *quota.Tracker {
	return s.tracker
}

// Result summarizes one executed keyword search
type Result struct {
	TotalResults int `json:"total_results"`
	NewLeads     int `json:"new_leads"`
}

// RunStats aggregates a multi-keyword search run
type RunStats struct {
	RunID              string   `json:"run_id"`
	CountriesProcessed int      `json:"countries_processed"`
	KeywordsProcessed  int      `json:"keywords_processed"`
	TotalResults       int      `json:"total_results"`
	NewLeads           int      `json:"new_leads"`
	SearchesUsed       int      `json:"searches_used"`
	Errors             []string `json:"errors"`
}

type searchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

// Search runs one Google Custom Search for a keyword and stores the
// resulting leads. A SearchLog row is written whether it succeeds or not;
// writing it is what consumes quota.
func (s *Service) Search(ctx context.Context, runID string, keyword *models.Keyword, country *models.Country) (*Result, error) {
	if ok, err := s.tracker.CanSearch(); err != nil {
		return nil, err
	} else if !ok {
		return nil, quota.ErrQuotaExceeded
	}

	items, err := s.fetch(ctx, keyword, country)
	if err != nil {
		s.logError(runID, keyword, err)
		return nil, err
	}

	result := &Result{TotalResults: len(items)}
	for _, item := range items {
		created, err := s.processResult(item, keyword)
		if err != nil {
			continue
		}
		if created {
			result.NewLeads++
		}
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		log := models.SearchLog{
			RunID:         runID,
			CountryID:     &keyword.CountryID,
			KeywordID:     &keyword.ID,
			KeywordText:   keyword.Text,
			ResultsCount:  len(items),
			NewLeadsCount: result.NewLeads,
			IsSuccess:     true,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}
		return tx.Model(keyword).Updates(map[string]interface{}{
			"total_searches": gorm.Expr("total_searches + 1"),
			"total_results":  gorm.Expr("total_results + ?", len(items)),
			"last_search_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) fetch(ctx context.Context, keyword *models.Keyword, country *models.Country) ([]searchItem, error) {
	num := keyword.ResultsPerSearch
	if num > s.cfg.MaxResultsPerSearch {
		num = s.cfg.MaxResultsPerSearch
	}

	params := url.Values{}
	params.Set("key", s.cfg.GoogleAPIKey)
	params.Set("cx", s.cfg.GoogleSearchEngineID)
	params.Set("q", keyword.Text)
	params.Set("num", strconv.Itoa(num))
	params.Set("gl", strings.ToLower(country.Code))
	params.Set("lr", "lang_"+country.Language)
	params.Set("dateRestrict", "y1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, customSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUpstream, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return body.Items, nil
}

// processResult stores one search result as a lead if it survives
// exclusion, marketplace classification, discard-history and dedup checks.
// Returns true when a new lead was created.
func (s *Service) processResult(item searchItem, keyword *models.Keyword) (bool, error) {
	domain := NormalizeDomain(item.Link)
	if domain == "" {
		return false, nil
	}

	bucket := models.BucketNew
	if s.isMarketplace(domain) {
		bucket = models.BucketMarketplace
	} else if s.isExcluded(domain) {
		return false, nil
	}

	// Previously discarded domains stay discarded; that is the point of
	// the discard audit trail.
	var discarded int64
	if err := s.db.Model(&models.DiscardRecord{}).
		Where("country_id = ? AND domain = ?", keyword.CountryID, domain).
		Count(&discarded).Error; err != nil {
		return false, err
	}
	if discarded > 0 {
		return false, nil
	}

	var existing models.Lead
	err := s.db.Where("country_id = ? AND domain = ?", keyword.CountryID, domain).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	name := item.Title
	if name == "" {
		name = domain
	}
	if len(name) > 500 {
		name = name[:500]
	}

	lead := models.Lead{
		CountryID:   keyword.CountryID,
		KeywordID:   &keyword.ID,
		KeywordText: keyword.Text,
		Name:        name,
		URL:         item.Link,
		Domain:      domain,
		Snippet:     item.Snippet,
		Bucket:      bucket,
	}
	if err := s.db.Create(&lead).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) isMarketplace(domain string) bool {
	var count int64
	if err := s.db.Model(&models.Marketplace{}).
		Where("? LIKE '%' || domain || '%'", domain).
		Count(&count).Error; err == nil && count > 0 {
		return true
	}
	for _, fragment := range s.cfg.Marketplaces {
		if strings.Contains(domain, fragment) {
			return true
		}
	}
	return false
}

func (s *Service) isExcluded(domain string) bool {
	for _, excluded := range s.cfg.ExcludedDomains {
		if strings.Contains(domain, excluded) {
			return true
		}
	}
	return false
}

func (s *Service) logError(runID string, keyword *models.Keyword, searchErr error) {
	msg := searchErr.Error()
	if len(msg) > 500 {
		msg = msg[:500]
	}
	log := models.SearchLog{
		RunID:        runID,
		CountryID:    &keyword.CountryID,
		KeywordID:    &keyword.ID,
		KeywordText:  keyword.Text,
		IsSuccess:    false,
		ErrorMessage: msg,
	}
	s.db.Create(&log)
}

// NormalizeDomain extracts the bare domain from a result URL, dropping
// www. and common storefront subdomains.
func NormalizeDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	domain := strings.ToLower(parsed.Hostname())
	for _, prefix := range strippedPrefixes {
		if strings.HasPrefix(domain, prefix) {
			domain = strings.TrimPrefix(domain, prefix)
			break
		}
	}
	return domain
}
