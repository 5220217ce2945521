package suggestions

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/config"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/scraper"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Analysis thresholds: a candidate becomes a suggestion when it appears
// often enough on one site or shows up on more than one.
const (
	minFrequency   = 3
	minWebsites    = 2
	maxSitesPerRun = 20
)

// candidate accumulates a keyword's counts across the analyzed sites
type candidate struct {
	frequency int
	websites  int
	source    string
}

// Handler handles keyword suggestion requests
type Handler struct {
	db       *gorm.DB
	analyzer *scraper.KeywordAnalyzer
}

// NewHandler creates a new suggestions handler
func NewHandler(db *gorm.DB, cfg *config.Config) *Handler {
	client := &http.Client{Timeout: cfg.ScrapeTimeout}
	return &Handler{
		db:       db,
		analyzer: scraper.NewKeywordAnalyzer(client, cfg.UserAgent),
	}
}

// AnalyzeResponse summarizes one analysis run
type AnalyzeResponse struct {
	SitesAnalyzed  int `json:"sites_analyzed"`
	SitesFailed    int `json:"sites_failed"`
	NewSuggestions int `json:"new_suggestions"`
}

// List returns the actionable suggestions of a country (not yet added
// or ignored), the strongest candidates first.
// @Summary List pending suggestions
// @Tags suggestions
// @Produce json
// @Param country_id query int false "Country ID"
// @Success 200 {array} models.Suggestion
// @Security BearerAuth
// @Router /suggestions [get]
func (h *Handler) List(c *gin.Context) {
	query := h.db.Where("is_added = ? AND is_ignored = ?", false, false)
	if countryID := c.Query("country_id"); countryID != "" {
		query = query.Where("country_id = ?", countryID)
	}

	var suggestions []models.Suggestion
	if err := query.Order("websites_count DESC, frequency DESC, text").
		Find(&suggestions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch suggestions"})
		return
	}

	c.JSON(http.StatusOK, suggestions)
}

// Analyze visits the saved-lead websites of a country and turns recurring
// page keywords into suggestions.
// @Summary Analyze lead websites for keyword suggestions
// @Tags suggestions
// @Produce json
// @Param id path int true "Country ID"
// @Success 200 {object} AnalyzeResponse
// @Failure 404 {object} map[string]string "Country not found"
// @Security BearerAuth
// @Router /suggestions/analyze/{id} [post]
func (h *Handler) Analyze(c *gin.Context) {
	var country models.Country
	if err := h.db.First(&country, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Country not found"})
		return
	}

	var leads []models.Lead
	if err := h.db.Where("country_id = ? AND bucket = ?", country.ID, models.BucketLeads).
		Order("found_at DESC").Limit(maxSitesPerRun).Find(&leads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leads"})
		return
	}

	candidates := make(map[string]*candidate)

	resp := AnalyzeResponse{}
	for _, lead := range leads {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 20*time.Second)
		analysis, err := h.analyzer.AnalyzeWebsite(ctx, lead.URL, country.Language)
		cancel()
		if err != nil {
			resp.SitesFailed++
			log.Printf("suggestions: analyze %s: %v", lead.Domain, err)
			continue
		}
		resp.SitesAnalyzed++

		seen := make(map[string]bool)
		for _, meta := range analysis.MetaKeywords {
			meta = strings.ToLower(strings.TrimSpace(meta))
			if meta == "" || seen[meta] {
				continue
			}
			seen[meta] = true
			addCandidate(candidates, meta, 1, "meta")
		}
		for _, kc := range analysis.SuggestedKeywords {
			if seen[kc.Keyword] {
				continue
			}
			seen[kc.Keyword] = true
			addCandidate(candidates, kc.Keyword, kc.Frequency, "content")
		}
	}

	for text, cand := range candidates {
		if cand.frequency < minFrequency && cand.websites < minWebsites {
			continue
		}
		if h.keywordExists(country.ID, text) {
			continue
		}

		var existing models.Suggestion
		err := h.db.Where("country_id = ? AND text = ?", country.ID, text).
			First(&existing).Error
		if err == nil {
			if existing.IsAdded || existing.IsIgnored {
				continue
			}
			h.db.Model(&existing).Updates(map[string]interface{}{
				"frequency":      cand.frequency,
				"websites_count": cand.websites,
			})
			continue
		}

		suggestion := models.Suggestion{
			CountryID:     country.ID,
			Text:          text,
			Source:        cand.source,
			Frequency:     cand.frequency,
			WebsitesCount: cand.websites,
		}
		if h.db.Create(&suggestion).Error == nil {
			resp.NewSuggestions++
		}
	}

	c.JSON(http.StatusOK, resp)
}

func addCandidate(candidates map[string]*candidate, text string, frequency int, source string) {
	if cand, ok := candidates[text]; ok {
		cand.frequency += frequency
		cand.websites++
		return
	}
	candidates[text] = &candidate{frequency: frequency, websites: 1, source: source}
}

func (h *Handler) keywordExists(countryID uint, text string) bool {
	var count int64
	h.db.Model(&models.Keyword{}).
		Where("country_id = ? AND LOWER(text) = LOWER(?)", countryID, text).
		Count(&count)
	return count > 0
}

// Add accepts a suggestion, creating the keyword for its country.
// Accepting twice returns the same keyword.
// @Summary Accept a suggestion
// @Tags suggestions
// @Produce json
// @Param id path int true "Suggestion ID"
// @Success 200 {object} models.Keyword
// @Failure 404 {object} map[string]string "Suggestion not found"
// @Failure 409 {object} map[string]string "Suggestion already ignored"
// @Security BearerAuth
// @Router /suggestions/{id}/add [post]
func (h *Handler) Add(c *gin.Context) {
	var suggestion models.Suggestion
	if err := h.db.First(&suggestion, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Suggestion not found"})
		return
	}
	if suggestion.IsIgnored {
		c.JSON(http.StatusConflict, gin.H{"error": "Suggestion was already ignored"})
		return
	}

	var keyword models.Keyword
	err := h.db.Where("country_id = ? AND LOWER(text) = LOWER(?)",
		suggestion.CountryID, suggestion.Text).First(&keyword).Error
	if err != nil {
		keyword = models.Keyword{
			CountryID:        suggestion.CountryID,
			Text:             suggestion.Text,
			Category:         "sugerida",
			ResultsPerSearch: 5,
			IsActive:         true,
		}
		if err := h.db.Create(&keyword).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create keyword"})
			return
		}
	}

	if !suggestion.IsAdded {
		if err := h.db.Model(&suggestion).Update("is_added", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update suggestion"})
			return
		}
	}

	c.JSON(http.StatusOK, keyword)
}

// Ignore dismisses a suggestion. Ignoring an accepted suggestion is
// rejected, the two outcomes are final.
// @Summary Ignore a suggestion
// @Tags suggestions
// @Produce json
// @Param id path int true "Suggestion ID"
// @Success 200 {object} models.Suggestion
// @Failure 404 {object} map[string]string "Suggestion not found"
// @Failure 409 {object} map[string]string "Suggestion already added"
// @Security BearerAuth
// @Router /suggestions/{id}/ignore [post]
func (h *Handler) Ignore(c *gin.Context) {
	var suggestion models.Suggestion
	if err := h.db.First(&suggestion, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Suggestion not found"})
		return
	}
	if suggestion.IsAdded {
		c.JSON(http.StatusConflict, gin.H{"error": "Suggestion was already added as a keyword"})
		return
	}

	if !suggestion.IsIgnored {
		if err := h.db.Model(&suggestion).Update("is_ignored", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update suggestion"})
			return
		}
		suggestion.IsIgnored = true
	}

	c.JSON(http.StatusOK, suggestion)
}

// RankedKeyword is one entry in the country keyword ranking
type RankedKeyword struct {
	Text          string `json:"text"`
	Type          string `json:"type"` // active, suggested
	TotalResults  int    `json:"total_results,omitempty"`
	TotalSearches int    `json:"total_searches,omitempty"`
	Category      string `json:"category,omitempty"`
	IsActive      bool   `json:"is_active,omitempty"`
	Frequency     int    `json:"frequency,omitempty"`
	WebsitesCount int    `json:"websites_count,omitempty"`
	Source        string `json:"source,omitempty"`
	IsAdded       bool   `json:"is_added,omitempty"`
}

// RankingResponse holds a country's keywords ranked next to its suggestions
type RankingResponse struct {
	CurrentKeywords   []RankedKeyword `json:"current_keywords"`
	SuggestedKeywords []RankedKeyword `json:"suggested_keywords"`
}

// Ranking returns a country's keywords ordered by harvested results
// alongside its not-ignored suggestions ordered by frequency.
// @Summary Keyword ranking for a country
// @Tags suggestions
// @Produce json
// @Param id path int true "Country ID"
// @Success 200 {object} RankingResponse
// @Failure 404 {object} map[string]string "Country not found"
// @Security BearerAuth
// @Router /suggestions/ranking/{id} [get]
func (h *Handler) Ranking(c *gin.Context) {
	var country models.Country
	if err := h.db.First(&country, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Country not found"})
		return
	}

	var keywords []models.Keyword
	if err := h.db.Where("country_id = ?", country.ID).
		Order("total_results DESC").Find(&keywords).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ranking"})
		return
	}

	var suggestions []models.Suggestion
	if err := h.db.Where("country_id = ? AND is_ignored = ?", country.ID, false).
		Order("frequency DESC").Limit(30).Find(&suggestions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ranking"})
		return
	}

	resp := RankingResponse{
		CurrentKeywords:   make([]RankedKeyword, len(keywords)),
		SuggestedKeywords: make([]RankedKeyword, len(suggestions)),
	}
	for i, kw := range keywords {
		resp.CurrentKeywords[i] = RankedKeyword{
			Text:          kw.Text,
			Type:          "active",
			TotalResults:  kw.TotalResults,
			TotalSearches: kw.TotalSearches,
			Category:      kw.Category,
			IsActive:      kw.IsActive,
		}
	}
	for i, s := range suggestions {
		resp.SuggestedKeywords[i] = RankedKeyword{
			Text:          s.Text,
			Type:          "suggested",
			Frequency:     s.Frequency,
			WebsitesCount: s.WebsitesCount,
			Source:        s.Source,
			IsAdded:       s.IsAdded,
		}
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers suggestion routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/suggestions", h.List)
	rg.POST("/suggestions/analyze/:id", h.Analyze)
	rg.POST("/suggestions/:id/add", h.Add)
	rg.POST("/suggestions/:id/ignore", h.Ignore)
	rg.GET("/suggestions/ranking/:id", h.Ranking)
}
