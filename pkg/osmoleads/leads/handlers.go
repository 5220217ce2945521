package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/config"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/scraper"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/triage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles lead requests
type Handler struct {
	db      *gorm.DB
	engine  *triage.Engine
	scraper *scraper.ContactScraper
}

// NewHandler creates a new leads handler
func NewHandler(db *gorm.DB, cfg *config.Config) *Handler {
	return &Handler{
		db:      db,
		engine:  triage.NewEngine(db),
		scraper: scraper.NewContactScraper(cfg.ScrapeTimeout, cfg.ScrapeDelay, cfg.UserAgent),
	}
}

// OptionalUint is a nullable ID field that remembers whether it appeared
// in the request body at all, so an explicit null can unset the value
// while an absent field leaves it alone.
type OptionalUint struct {
	Set   bool
	Value *uint
}

func (o *OptionalUint) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// UpdateLeadRequest represents the request to update lead contact fields
type UpdateLeadRequest struct {
	Name     string       `json:"name"`
	Email    *string      `json:"email"`
	Phone    *string      `json:"phone"`
	CIF      *string      `json:"cif"`
	StatusID OptionalUint `json:"status_id"`
}

// DiscardRequest carries the reason recorded when discarding a lead
type DiscardRequest struct {
	Reason string `json:"reason"`
}

func respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, triage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
	case errors.Is(err, triage.ErrInvalidBucket):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bucket"})
	case errors.Is(err, triage.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Operation failed"})
	}
}

func parseFilters(c *gin.Context) triage.Filters {
	var f triage.Filters
	if v, err := strconv.ParseUint(c.Query("keyword_id"), 10, 32); err == nil {
		id := uint(v)
		f.KeywordID = &id
	}
	if v, err := strconv.ParseUint(c.Query("status_id"), 10, 32); err == nil {
		id := uint(v)
		f.StatusID = &id
	}
	f.Search = c.Query("search")
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if f.Limit < 1 || f.Limit > 500 {
		f.Limit = 100
	}
	f.Offset, _ = strconv.Atoi(c.Query("offset"))
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// List returns the leads of one bucket for a country
// @Summary List leads in a bucket
// @Tags leads
// @Produce json
// @Param country_id query int true "Country ID"
// @Param bucket query string true "Bucket (new, leads, doubts, discarded, marketplace)"
// @Param keyword_id query int false "Filter by keyword"
// @Param status_id query int false "Filter by status"
// @Param search query string false "Substring match on name, domain, URL or email"
// @Param limit query int false "Page size (default 100, max 500)"
// @Param offset query int false "Page offset"
// @Success 200 {array} models.Lead
// @Failure 400 {object} map[string]string "Invalid bucket"
// @Security BearerAuth
// @Router /leads [get]
func (h *Handler) List(c *gin.Context) {
	countryID, err := strconv.ParseUint(c.Query("country_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country_id query parameter is required"})
		return
	}
	bucket := models.Bucket(c.DefaultQuery("bucket", string(models.BucketNew)))

	result, err := h.engine.ListByBucket(uint(countryID), bucket, parseFilters(c))
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Stats returns per-bucket lead counts for a country
// @Summary Lead counts per bucket
// @Tags leads
// @Produce json
// @Param country_id query int true "Country ID"
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /leads/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	countryID, err := strconv.ParseUint(c.Query("country_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country_id query parameter is required"})
		return
	}

	stats, err := h.engine.ComputeStats(uint(countryID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Get returns a lead with its status and notes
// @Summary Get a lead
// @Tags leads
// @Produce json
// @Param id path int true "Lead ID"
// @Success 200 {object} models.Lead
// @Failure 404 {object} map[string]string "Lead not found"
// @Security BearerAuth
// @Router /leads/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	var lead models.Lead
	if err := h.db.Preload("Status").Preload("Notes", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).First(&lead, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	c.JSON(http.StatusOK, lead)
}

// Update updates a lead's editable fields
// @Summary Update a lead
// @Tags leads
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param request body UpdateLeadRequest true "Updated fields"
// @Success 200 {object} models.Lead
// @Failure 404 {object} map[string]string "Lead or status not found"
// @Security BearerAuth
// @Router /leads/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	var lead models.Lead
	if err := h.db.First(&lead, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.StatusID.Set {
		if _, err := h.engine.SetStatus(lead.ID, req.StatusID.Value); err != nil {
			respondEngineError(c, err)
			return
		}
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.CIF != nil {
		updates["cif"] = *req.CIF
	}
	if len(updates) > 0 {
		if err := h.db.Model(&lead).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lead"})
			return
		}
	}

	h.db.Preload("Status").First(&lead, lead.ID)
	c.JSON(http.StatusOK, lead)
}

// Move moves a lead to another bucket
// @Summary Move a lead between buckets
// @Tags leads
// @Produce json
// @Param id path int true "Lead ID"
// @Param bucket path string true "Target bucket"
// @Success 200 {object} models.Lead
// @Failure 400 {object} map[string]string "Invalid target bucket"
// @Failure 404 {object} map[string]string "Lead not found"
// @Failure 409 {object} map[string]string "Lead already in bucket"
// @Security BearerAuth
// @Router /leads/{id}/move/{bucket} [post]
func (h *Handler) Move(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	lead, err := h.engine.MoveLead(uint(id), models.Bucket(c.Param("bucket")))
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// Discard moves a lead to the discarded bucket and records why, so the
// search pipeline stops re-importing the domain.
// @Summary Discard a lead
// @Tags leads
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param request body DiscardRequest false "Discard reason"
// @Success 200 {object} models.Lead
// @Failure 404 {object} map[string]string "Lead not found"
// @Failure 409 {object} map[string]string "Already discarded"
// @Security BearerAuth
// @Router /leads/{id}/discard [post]
func (h *Handler) Discard(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	var req DiscardRequest
	c.ShouldBindJSON(&req)

	lead, err := h.engine.DiscardLead(uint(id), req.Reason)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// ExtractContact scrapes the lead's website for contact details
// @Summary Extract contact info from a lead's website
// @Tags leads
// @Produce json
// @Param id path int true "Lead ID"
// @Success 200 {object} scraper.ContactInfo
// @Failure 404 {object} map[string]string "Lead not found"
// @Failure 502 {object} map[string]string "Website unreachable"
// @Security BearerAuth
// @Router /leads/{id}/extract-contact [post]
func (h *Handler) ExtractContact(c *gin.Context) {
	var lead models.Lead
	if err := h.db.First(&lead, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	info, err := h.scraper.ExtractContactInfo(ctx, lead.URL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to reach the lead's website"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"contact_extracted":    true,
		"contact_extracted_at": &now,
	}
	if info.Email != "" && lead.Email == "" {
		updates["email"] = info.Email
	}
	if info.Phone != "" && lead.Phone == "" {
		updates["phone"] = info.Phone
	}
	if info.CIF != "" && lead.CIF == "" {
		updates["cif"] = info.CIF
	}
	if err := h.db.Model(&lead).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save contact info"})
		return
	}

	h.db.First(&lead, lead.ID)
	c.JSON(http.StatusOK, gin.H{"lead": lead, "extraction": info})
}

// Delete permanently deletes a lead and its notes
// @Summary Delete a lead
// @Tags leads
// @Produce json
// @Param id path int true "Lead ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Lead not found"
// @Security BearerAuth
// @Router /leads/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	var lead models.Lead
	if err := h.db.First(&lead, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", lead.ID).Delete(&models.Note{}).Error; err != nil {
			return err
		}
		return tx.Delete(&lead).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete lead"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted"})
}

// RegisterRoutes registers lead routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads", h.List)
	rg.GET("/leads/stats", h.Stats)
	rg.GET("/leads/export", h.Export)
	rg.GET("/leads/export-all", h.ExportAll)
	rg.GET("/leads/:id", h.Get)
	rg.PUT("/leads/:id", h.Update)
	rg.DELETE("/leads/:id", h.Delete)
	rg.POST("/leads/:id/move/:bucket", h.Move)
	rg.POST("/leads/:id/discard", h.Discard)
	rg.POST("/leads/:id/extract-contact", h.ExtractContact)
	rg.GET("/leads/:id/notes", h.ListNotes)
	rg.POST("/leads/:id/notes", h.CreateNote)
	rg.DELETE("/notes/:id", h.DeleteNote)
}
