package keywords

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles keyword requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new keywords handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateKeywordRequest represents the request to create a keyword
type CreateKeywordRequest struct {
	CountryID        uint   `json:"country_id" binding:"required"`
	Text             string `json:"text" binding:"required"`
	Category         string `json:"category"`
	ResultsPerSearch int    `json:"results_per_search"`
}

// UpdateKeywordRequest represents the request to update a keyword
type UpdateKeywordRequest struct {
	Text             string `json:"text"`
	Category         string `json:"category"`
	ResultsPerSearch *int   `json:"results_per_search"`
	IsActive         *bool  `json:"is_active"`
}

// List returns the keywords of a country
// @Summary List keywords for a country
// @Tags keywords
// @Produce json
// @Param country_id query int true "Country ID"
// @Param active_only query bool false "Only active keywords"
// @Success 200 {array} models.Keyword
// @Security BearerAuth
// @Router /keywords [get]
func (h *Handler) List(c *gin.Context) {
	countryID, err := strconv.ParseUint(c.Query("country_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country_id query parameter is required"})
		return
	}

	query := h.db.Where("country_id = ?", countryID)
	if c.Query("active_only") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var keywords []models.Keyword
	if err := query.Order("text").Find(&keywords).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch keywords"})
		return
	}

	c.JSON(http.StatusOK, keywords)
}

// Get returns a keyword by ID
// @Summary Get a keyword
// @Tags keywords
// @Produce json
// @Param id path int true "Keyword ID"
// @Success 200 {object} models.Keyword
// @Failure 404 {object} map[string]string "Keyword not found"
// @Security BearerAuth
// @Router /keywords/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	var keyword models.Keyword
	if err := h.db.First(&keyword, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyword not found"})
		return
	}

	c.JSON(http.StatusOK, keyword)
}

// Create creates a new keyword
// @Summary Create a keyword
// @Tags keywords
// @Accept json
// @Produce json
// @Param request body CreateKeywordRequest true "Keyword details"
// @Success 201 {object} models.Keyword
// @Failure 400 {object} map[string]string "Blank text or bad bounds"
// @Failure 409 {object} map[string]string "Duplicate text for country"
// @Security BearerAuth
// @Router /keywords [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Keyword text cannot be blank"})
		return
	}
	if req.ResultsPerSearch != 0 && (req.ResultsPerSearch < 1 || req.ResultsPerSearch > 10) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "results_per_search must be between 1 and 10"})
		return
	}

	var country models.Country
	if err := h.db.First(&country, req.CountryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Country not found"})
		return
	}

	var existing models.Keyword
	if err := h.db.Where("country_id = ? AND LOWER(text) = LOWER(?)", req.CountryID, text).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This keyword already exists for the country"})
		return
	}

	category := req.Category
	if category == "" {
		category = "general"
	}
	resultsPerSearch := req.ResultsPerSearch
	if resultsPerSearch == 0 {
		resultsPerSearch = 5
	}

	keyword := models.Keyword{
		CountryID:        req.CountryID,
		Text:             text,
		Category:         category,
		ResultsPerSearch: resultsPerSearch,
		IsActive:         true,
	}
	if err := h.db.Create(&keyword).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create keyword"})
		return
	}

	c.JSON(http.StatusCreated, keyword)
}

// Update updates a keyword
// @Summary Update a keyword
// @Tags keywords
// @Accept json
// @Produce json
// @Param id path int true "Keyword ID"
// @Param request body UpdateKeywordRequest true "Updated fields"
// @Success 200 {object} models.Keyword
// @Failure 404 {object} map[string]string "Keyword not found"
// @Failure 409 {object} map[string]string "Duplicate text for country"
// @Security BearerAuth
// @Router /keywords/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var keyword models.Keyword
	if err := h.db.First(&keyword, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyword not found"})
		return
	}

	var req UpdateKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Text != "" {
		text := strings.TrimSpace(req.Text)
		if text == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Keyword text cannot be blank"})
			return
		}
		var existing models.Keyword
		if err := h.db.Where("country_id = ? AND LOWER(text) = LOWER(?) AND id <> ?",
			keyword.CountryID, text, keyword.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "This keyword already exists for the country"})
			return
		}
		keyword.Text = text
	}
	if req.Category != "" {
		keyword.Category = req.Category
	}
	if req.ResultsPerSearch != nil {
		if *req.ResultsPerSearch < 1 || *req.ResultsPerSearch > 10 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "results_per_search must be between 1 and 10"})
			return
		}
		keyword.ResultsPerSearch = *req.ResultsPerSearch
	}
	if req.IsActive != nil {
		keyword.IsActive = *req.IsActive
	}

	if err := h.db.Save(&keyword).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update keyword"})
		return
	}

	c.JSON(http.StatusOK, keyword)
}

// Toggle flips a keyword's active flag. Accumulated search counters
// are left untouched.
// @Summary Toggle a keyword
// @Tags keywords
// @Produce json
// @Param id path int true "Keyword ID"
// @Success 200 {object} models.Keyword
// @Failure 404 {object} map[string]string "Keyword not found"
// @Security BearerAuth
// @Router /keywords/{id}/toggle [post]
func (h *Handler) Toggle(c *gin.Context) {
	var keyword models.Keyword
	if err := h.db.First(&keyword, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyword not found"})
		return
	}

	if err := h.db.Model(&keyword).Update("is_active", !keyword.IsActive).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle keyword"})
		return
	}

	c.JSON(http.StatusOK, keyword)
}

// Delete deletes a keyword. Leads found through it keep their
// denormalized keyword text.
// @Summary Delete a keyword
// @Tags keywords
// @Produce json
// @Param id path int true "Keyword ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Keyword not found"
// @Security BearerAuth
// @Router /keywords/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	var keyword models.Keyword
	if err := h.db.First(&keyword, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyword not found"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Lead{}).Where("keyword_id = ?", keyword.ID).
			Update("keyword_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&keyword).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete keyword"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Keyword deleted"})
}

// RegisterRoutes registers keyword routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/keywords", h.List)
	rg.POST("/keywords", h.Create)
	rg.GET("/keywords/:id", h.Get)
	rg.PUT("/keywords/:id", h.Update)
	rg.DELETE("/keywords/:id", h.Delete)
	rg.POST("/keywords/:id/toggle", h.Toggle)
}
