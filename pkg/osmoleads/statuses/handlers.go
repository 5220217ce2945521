package statuses

import (
	"net/http"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles lead status requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new statuses handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateStatusRequest represents the request to create a status
type CreateStatusRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=50"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sort_order"`
}

// UpdateStatusRequest represents the request to update a status
type UpdateStatusRequest struct {
	Name      string `json:"name" binding:"omitempty,min=1,max=50"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	SortOrder *int   `json:"sort_order"`
}

// List returns all statuses ordered for display
// @Summary List lead statuses
// @Tags statuses
// @Produce json
// @Success 200 {array} models.LeadStatus
// @Security BearerAuth
// @Router /statuses [get]
func (h *Handler) List(c *gin.Context) {
	var statuses []models.LeadStatus
	if err := h.db.Order("sort_order, name").Find(&statuses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statuses"})
		return
	}

	c.JSON(http.StatusOK, statuses)
}

// Get returns a status by ID
// @Summary Get a lead status
// @Tags statuses
// @Produce json
// @Param id path int true "Status ID"
// @Success 200 {object} models.LeadStatus
// @Failure 404 {object} map[string]string "Status not found"
// @Security BearerAuth
// @Router /statuses/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	var status models.LeadStatus
	if err := h.db.First(&status, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Status not found"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Create creates a custom status
// @Summary Create a lead status
// @Tags statuses
// @Accept json
// @Produce json
// @Param request body CreateStatusRequest true "Status details"
// @Success 201 {object} models.LeadStatus
// @Failure 409 {object} map[string]string "Name already exists"
// @Security BearerAuth
// @Router /statuses [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.LeadStatus
	if err := h.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A status with this name already exists"})
		return
	}

	status := models.LeadStatus{
		Name:      req.Name,
		Color:     req.Color,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	}
	if status.Color == "" {
		status.Color = "#6B7280"
	}
	if err := h.db.Create(&status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create status"})
		return
	}

	c.JSON(http.StatusCreated, status)
}

// Update updates a custom status. System statuses are immutable.
// @Summary Update a lead status
// @Tags statuses
// @Accept json
// @Produce json
// @Param id path int true "Status ID"
// @Param request body UpdateStatusRequest true "Updated fields"
// @Success 200 {object} models.LeadStatus
// @Failure 404 {object} map[string]string "Status not found"
// @Failure 409 {object} map[string]string "System status"
// @Security BearerAuth
// @Router /statuses/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var status models.LeadStatus
	if err := h.db.First(&status, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Status not found"})
		return
	}
	if status.IsSystem {
		c.JSON(http.StatusConflict, gin.H{"error": "System statuses cannot be modified"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" && req.Name != status.Name {
		var existing models.LeadStatus
		if err := h.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "A status with this name already exists"})
			return
		}
		status.Name = req.Name
	}
	if req.Color != "" {
		status.Color = req.Color
	}
	if req.Icon != "" {
		status.Icon = req.Icon
	}
	if req.SortOrder != nil {
		status.SortOrder = *req.SortOrder
	}

	if err := h.db.Save(&status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Delete deletes a custom status, leads pointing at it fall back to no status
// @Summary Delete a lead status
// @Tags statuses
// @Produce json
// @Param id path int true "Status ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Status not found"
// @Failure 409 {object} map[string]string "System status"
// @Security BearerAuth
// @Router /statuses/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	var status models.LeadStatus
	if err := h.db.First(&status, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Status not found"})
		return
	}
	if status.IsSystem {
		c.JSON(http.StatusConflict, gin.H{"error": "System statuses cannot be deleted"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Lead{}).Where("status_id = ?", status.ID).
			Update("status_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&status).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status deleted"})
}

// RegisterRoutes registers status routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/statuses", h.List)
	rg.POST("/statuses", h.Create)
	rg.GET("/statuses/:id", h.Get)
	rg.PUT("/statuses/:id", h.Update)
	rg.DELETE("/statuses/:id", h.Delete)
}
