package settings

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/search"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles application setting and marketplace requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new settings handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// UpdateMaxSearchesRequest represents the request to change the daily
// search quota. Zero disables the limit.
type UpdateMaxSearchesRequest struct {
	MaxSearches *int `json:"max_searches" binding:"required"`
}

// MaxSearchesResponse represents the current quota setting
type MaxSearchesResponse struct {
	MaxSearches int  `json:"max_searches"`
	IsUnlimited bool `json:"is_unlimited"`
}

// CreateMarketplaceRequest represents the request to register a
// marketplace domain
type CreateMarketplaceRequest struct {
	Domain string `json:"domain" binding:"required"`
	Name   string `json:"name"`
}

// GetMaxSearches returns the daily search quota
// @Summary Get the daily search quota
// @Tags settings
// @Produce json
// @Success 200 {object} MaxSearchesResponse
// @Security BearerAuth
// @Router /settings/max-searches [get]
func (h *Handler) GetMaxSearches(c *gin.Context) {
	var setting models.AppSetting
	maxSearches := 0
	if err := h.db.Where("key = ?", models.SettingMaxSearches).
		First(&setting).Error; err == nil {
		maxSearches, _ = strconv.Atoi(setting.Value)
	}

	c.JSON(http.StatusOK, MaxSearchesResponse{
		MaxSearches: maxSearches,
		IsUnlimited: maxSearches == 0,
	})
}

// UpdateMaxSearches changes the daily search quota
// @Summary Update the daily search quota
// @Tags settings
// @Accept json
// @Produce json
// @Param request body UpdateMaxSearchesRequest true "New quota, 0 for unlimited"
// @Success 200 {object} MaxSearchesResponse
// @Failure 400 {object} map[string]string "Negative quota"
// @Security BearerAuth
// @Router /settings/max-searches [put]
func (h *Handler) UpdateMaxSearches(c *gin.Context) {
	var req UpdateMaxSearchesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.MaxSearches < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_searches cannot be negative"})
		return
	}

	value := strconv.Itoa(*req.MaxSearches)
	var setting models.AppSetting
	err := h.db.Where("key = ?", models.SettingMaxSearches).First(&setting).Error
	if err != nil {
		setting = models.AppSetting{
			Key:         models.SettingMaxSearches,
			Value:       value,
			Description: "Daily Google search limit, 0 disables the limit",
		}
		err = h.db.Create(&setting).Error
	} else {
		err = h.db.Model(&setting).Update("value", value).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update setting"})
		return
	}

	c.JSON(http.StatusOK, MaxSearchesResponse{
		MaxSearches: *req.MaxSearches,
		IsUnlimited: *req.MaxSearches == 0,
	})
}

// ListMarketplaces returns the registered marketplace domains
// @Summary List marketplace domains
// @Tags settings
// @Produce json
// @Success 200 {array} models.Marketplace
// @Security BearerAuth
// @Router /settings/marketplaces [get]
func (h *Handler) ListMarketplaces(c *gin.Context) {
	var marketplaces []models.Marketplace
	if err := h.db.Order("domain").Find(&marketplaces).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch marketplaces"})
		return
	}

	c.JSON(http.StatusOK, marketplaces)
}

// CreateMarketplace registers a marketplace domain. New results matching
// it are routed into the marketplace bucket from then on.
// @Summary Register a marketplace domain
// @Tags settings
// @Accept json
// @Produce json
// @Param request body CreateMarketplaceRequest true "Marketplace details"
// @Success 201 {object} models.Marketplace
// @Failure 409 {object} map[string]string "Domain already registered"
// @Security BearerAuth
// @Router /settings/marketplaces [post]
func (h *Handler) CreateMarketplace(c *gin.Context) {
	var req CreateMarketplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw := strings.ToLower(strings.TrimSpace(req.Domain))
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	domain := search.NormalizeDomain(raw)
	if domain == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid domain"})
		return
	}

	var existing models.Marketplace
	if err := h.db.Where("domain = ?", domain).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "This domain is already registered"})
		return
	}

	name := req.Name
	if name == "" {
		name = domain
	}
	marketplace := models.Marketplace{Domain: domain, Name: name}
	if err := h.db.Create(&marketplace).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create marketplace"})
		return
	}

	c.JSON(http.StatusCreated, marketplace)
}

// DeleteMarketplace removes a marketplace domain. Seeded system rows
// cannot be removed.
// @Summary Delete a marketplace domain
// @Tags settings
// @Produce json
// @Param id path int true "Marketplace ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Marketplace not found"
// @Failure 409 {object} map[string]string "System marketplace"
// @Security BearerAuth
// @Router /settings/marketplaces/{id} [delete]
func (h *Handler) DeleteMarketplace(c *gin.Context) {
	var marketplace models.Marketplace
	if err := h.db.First(&marketplace, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Marketplace not found"})
		return
	}
	if marketplace.IsSystem {
		c.JSON(http.StatusConflict, gin.H{"error": "System marketplaces cannot be deleted"})
		return
	}

	if err := h.db.Delete(&marketplace).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete marketplace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marketplace deleted"})
}

// RegisterRoutes registers setting routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings/max-searches", h.GetMaxSearches)
	rg.PUT("/settings/max-searches", h.UpdateMaxSearches)
	rg.GET("/settings/marketplaces", h.ListMarketplaces)
	rg.POST("/settings/marketplaces", h.CreateMarketplace)
	rg.DELETE("/settings/marketplaces/:id", h.DeleteMarketplace)
}
