package search

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/config"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/quota"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	// ErrNoActiveKeywords means a run found nothing to search
	ErrNoActiveKeywords = errors.New("no active keywords to search")
	// ErrNoActiveCountries means trigger-all found no active country
	ErrNoActiveCountries = errors.New("no active countries")
)

// Handler handles search trigger, quota and history requests
type Handler struct {
	db      *gorm.DB
	service *Service
}

// NewHandler creates a new search handler
func NewHandler(db *gorm.DB, cfg *config.Config) *Handler {
	return &Handler{db: db, service: NewService(db, cfg)}
}

// TriggerRequest optionally narrows a country run to specific keywords
type TriggerRequest struct {
	KeywordIDs []uint `json:"keyword_ids"`
}

// StatsResponse is the daily quota snapshot
type StatsResponse struct {
	SearchesToday int  `json:"searches_today"`
	MaxSearches   int  `json:"max_searches"`
	Remaining     int  `json:"remaining"`
	IsUnlimited   bool `json:"is_unlimited"`
}

// Stats returns today's search usage and the remaining budget
// @Summary Get search quota stats
// @Tags search
// @Produce json
// @Success 200 {object} StatsResponse
// @Security BearerAuth
// @Router /search/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	tracker := h.service.Tracker()

	today, err := tracker.SearchesToday()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read search stats"})
		return
	}
	remaining, err := tracker.Remaining()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read search stats"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		SearchesToday: today,
		MaxSearches:   tracker.MaxSearches(),
		Remaining:     remaining,
		IsUnlimited:   remaining == quota.Unlimited,
	})
}

// TriggerCountry runs searches for one country's active keywords
// @Summary Trigger searches for a country
// @Tags search
// @Accept json
// @Produce json
// @Param id path int true "Country ID"
// @Param request body TriggerRequest false "Optional keyword filter"
// @Success 200 {object} RunStats
// @Failure 404 {object} map[string]string "Country not found"
// @Failure 429 {object} map[string]string "Quota exceeded"
// @Security BearerAuth
// @Router /search/country/{id} [post]
func (h *Handler) TriggerCountry(c *gin.Context) {
	countryID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid country ID"})
		return
	}

	var country models.Country
	if err := h.db.First(&country, countryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Country not found"})
		return
	}

	var req TriggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if ok, err := h.service.Tracker().CanSearch(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read search quota"})
		return
	} else if !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": quota.ErrQuotaExceeded.Error()})
		return
	}

	stats, err := h.service.RunCountry(c.Request.Context(), &country, req.KeywordIDs)
	if err != nil {
		if errors.Is(err, ErrNoActiveKeywords) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// TriggerAll runs searches for every active country
// @Summary Trigger searches for all active countries
// @Tags search
// @Produce json
// @Success 200 {object} RunStats
// @Failure 429 {object} map[string]string "Quota exceeded"
// @Security BearerAuth
// @Router /search/all [post]
func (h *Handler) TriggerAll(c *gin.Context) {
	if ok, err := h.service.Tracker().CanSearch(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read search quota"})
		return
	} else if !ok {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": quota.ErrQuotaExceeded.Error()})
		return
	}

	stats, err := h.service.RunAll(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrNoActiveCountries) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HistoryEntry is one past search in the history listing
type HistoryEntry struct {
	ID       uint   `json:"id"`
	RunID    string `json:"run_id"`
	Keyword  string `json:"keyword"`
	Results  int    `json:"results"`
	NewLeads int    `json:"new_leads"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Date     string `json:"date"`
}

// History lists past searches, newest first
// @Summary Get search history
// @Tags search
// @Produce json
// @Param country_id query int false "Filter by country"
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {array} HistoryEntry
// @Security BearerAuth
// @Router /search/history [get]
func (h *Handler) History(c *gin.Context) {
	query := h.db.Model(&models.SearchLog{}).Order("searched_at DESC")

	if countryID := c.Query("country_id"); countryID != "" {
		query = query.Where("country_id = ?", countryID)
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var logs []models.SearchLog
	if err := query.Limit(limit).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	entries := make([]HistoryEntry, len(logs))
	for i, log := range logs {
		entries[i] = HistoryEntry{
			ID:       log.ID,
			RunID:    log.RunID,
			Keyword:  log.KeywordText,
			Results:  log.ResultsCount,
			NewLeads: log.NewLeadsCount,
			Success:  log.IsSuccess,
			Error:    log.ErrorMessage,
			Date:     log.SearchedAt.UTC().Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, entries)
}

// RegisterRoutes registers search routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search/stats", h.Stats)
	rg.GET("/search/history", h.History)
	rg.POST("/search/country/:id", h.TriggerCountry)
	rg.POST("/search/all", h.TriggerAll)
}
