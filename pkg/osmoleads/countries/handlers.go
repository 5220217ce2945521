package countries

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// maxFlagBytes caps uploaded flag images (stored inline as data URLs)
const maxFlagBytes = 500 * 1024

// Handler handles country requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new countries handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateCountryRequest represents the request to create a country
type CreateCountryRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Code      string `json:"code" binding:"required,min=2,max=10"`
	Language  string `json:"language" binding:"omitempty,max=10"`
	FlagImage string `json:"flag_image"`
}

// UpdateCountryRequest represents the request to update a country
type UpdateCountryRequest struct {
	Name      string  `json:"name" binding:"omitempty,min=1,max=100"`
	Code      string  `json:"code" binding:"omitempty,min=2,max=10"`
	Language  string  `json:"language" binding:"omitempty,max=10"`
	FlagImage *string `json:"flag_image"`
	IsActive  *bool   `json:"is_active"`
}

// CountryResponse represents a country in API responses, with counts
// recomputed from the live keyword and lead sets.
type CountryResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	Language      string `json:"language"`
	FlagImage     string `json:"flag_image"`
	IsActive      bool   `json:"is_active"`
	KeywordsCount int64  `json:"keywords_count"`
	LeadsCount    int64  `json:"leads_count"`
	CreatedAt     string `json:"created_at"`
}

func (h *Handler) countryToResponse(country models.Country) CountryResponse {
	var keywordsCount, leadsCount int64
	h.db.Model(&models.Keyword{}).Where("country_id = ?", country.ID).Count(&keywordsCount)
	h.db.Model(&models.Lead{}).Where("country_id = ?", country.ID).Count(&leadsCount)

	return CountryResponse{
		ID:            country.ID,
		Name:          country.Name,
		Code:          country.Code,
		Language:      country.Language,
		FlagImage:     country.FlagImage,
		IsActive:      country.IsActive,
		KeywordsCount: keywordsCount,
		LeadsCount:    leadsCount,
		CreatedAt:     country.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// List returns all countries with their derived counts
// @Summary List countries
// @Tags countries
// @Produce json
// @Success 200 {array} CountryResponse
// @Security BearerAuth
// @Router /countries [get]
func (h *Handler) List(c *gin.Context) {
	var countries []models.Country
	if err := h.db.Order("name").Find(&countries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch countries"})
		return
	}

	responses := make([]CountryResponse, len(countries))
	for i, country := range countries {
		responses[i] = h.countryToResponse(country)
	}

	c.JSON(http.StatusOK, responses)
}

// Get returns a country by ID
// @Summary Get a country
// @Tags countries
// @Produce json
// @Param id path int true "Country ID"
// @Success 200 {object} CountryResponse
// @Failure 404 {object} map[string]string "Country not found"
// @Security BearerAuth
// @Router /countries/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	var country models.Country
	if err := h.db.First(&country, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Country not found"})
		return
	}

	c.JSON(http.StatusOK, h.countryToResponse(country))
}

// Create creates a new country
// @Summary Create a country
// @Tags countries
// @Accept json
// @Produce json
// @Param request body CreateCountryRequest true "Country details"
// @Success 201 {object} CountryResponse
// @Failure 409 {object} map[string]string "Name already exists"
// @Security BearerAuth
// @Router /countries [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateCountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Country
	if err := h.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A country with this name already exists"})
		return
	}

	language := strings.ToLower(req.Language)
	if language == "" {
		language = "es"
	}

	country := models.Country{
		Name:      req.Name,
		Code:      strings.ToUpper(req.Code),
		Language:  language,
		FlagImage: req.FlagImage,
		IsActive:  true,
	}
	if err := h.db.Create(&country).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create country"})
		return
	}

	c.JSON(http.StatusCreated, h.countryToResponse(country))
}

// Update updates a country
// @Summary Update a country
// @Tags countries
// @Accept json
// @Produce json
// @Param id path int true "Country ID"
// @Param request body UpdateCountryRequest true "Updated fields"
// @Success 200 {object} CountryResponse
// @Failure 404 {object} map[string]string "Country not found"
// @Security BearerAuth
// @Router /countries/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var country models.Country
	if err := h.db.First(&country, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Country not found"})
		return
	}

	var req UpdateCountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		country.Name = req.Name
	}
	if req.Code != "" {
		country.Code = strings.ToUpper(req.Code)
	}
	if req.Language != "" {
		country.Language = strings.ToLower(req.Language)
	}
	if req.FlagImage != nil {
		country.FlagImage = *req.FlagImage
	}
	if req.IsActive != nil {
		country.IsActive = *req.IsActive
	}

	if err := h.db.Save(&country).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update country"})
		return
	}

	c.JSON(http.StatusOK, h.countryToResponse(country))
}

// Delete deletes a country and everything hanging off it
// @Summary Delete a country
// @Description Delete a country along with its keywords, leads, notes, suggestions and logs
// @Tags countries
// @Produce json
// @Param id path int true "Country ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Country not found"
// @Security BearerAuth
// @Router /countries/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	var country models.Country
	if err := h.db.First(&country, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Country not found"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var leadIDs []uint
		if err := tx.Model(&models.Lead{}).Where("country_id = ?", country.ID).
			Pluck("id", &leadIDs).Error; err != nil {
			return err
		}
		if len(leadIDs) > 0 {
			if err := tx.Where("lead_id IN ?", leadIDs).Delete(&models.Note{}).Error; err != nil {
				return err
			}
		}
		for _, model := range []interface{}{
			&models.Lead{}, &models.Keyword{}, &models.Suggestion{},
			&models.SearchLog{}, &models.DiscardRecord{},
		} {
			if err := tx.Where("country_id = ?", country.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&country).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete country"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Country deleted"})
}

// UploadFlag stores a flag image for a country as an inline data URL
// @Summary Upload a country flag
// @Tags countries
// @Accept mpfd
// @Produce json
// @Param id path int true "Country ID"
// @Param file formData file true "Flag image (max 500KB)"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Not an image or too large"
// @Failure 404 {object} map[string]string "Country not found"
// @Security BearerAuth
// @Router /countries/{id}/flag [post]
func (h *Handler) UploadFlag(c *gin.Context) {
	var country models.Country
	if err := h.db.First(&country, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Country not found"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be an image"})
		return
	}
	if fileHeader.Size > maxFlagBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large (max 500KB)"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxFlagBytes+1))
	if err != nil || len(content) > maxFlagBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large (max 500KB)"})
		return
	}

	country.FlagImage = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(content)
	if err := h.db.Save(&country).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update flag"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Flag updated"})
}

// RegisterRoutes registers country routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/countries", h.List)
	rg.POST("/countries", h.Create)
	rg.GET("/countries/:id", h.Get)
	rg.PUT("/countries/:id", h.Update)
	rg.DELETE("/countries/:id", h.Delete)
	rg.POST("/countries/:id/flag", h.UploadFlag)
}
