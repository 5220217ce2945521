package leads

import (
	"net/http"
	"strings"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/gin-gonic/gin"
)

// CreateNoteRequest represents the request to add a note to a lead
type CreateNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListNotes returns a lead's notes, newest first
// @Summary List notes on a lead
// @Tags notes
// @Produce json
// @Param id path int true "Lead ID"
// @Success 200 {array} models.Note
// @Failure 404 {object} map[string]string "Lead not found"
// @Security BearerAuth
// @Router /leads/{id}/notes [get]
func (h *Handler) ListNotes(c *gin.Context) {
	var lead models.Lead
	if err := h.db.First(&lead, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	var notes []models.Note
	if err := h.db.Where("lead_id = ?", lead.ID).Order("created_at DESC").
		Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notes"})
		return
	}

	c.JSON(http.StatusOK, notes)
}

// CreateNote adds a note to a lead
// @Summary Add a note to a lead
// @Tags notes
// @Accept json
// @Produce json
// @Param id path int true "Lead ID"
// @Param request body CreateNoteRequest true "Note content"
// @Success 201 {object} models.Note
// @Failure 404 {object} map[string]string "Lead not found"
// @Security BearerAuth
// @Router /leads/{id}/notes [post]
func (h *Handler) CreateNote(c *gin.Context) {
	var lead models.Lead
	if err := h.db.First(&lead, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Note content cannot be blank"})
		return
	}

	note := models.Note{LeadID: lead.ID, Content: content}
	if err := h.db.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create note"})
		return
	}

	c.JSON(http.StatusCreated, note)
}

// DeleteNote deletes a note
// @Summary Delete a note
// @Tags notes
// @Produce json
// @Param id path int true "Note ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Note not found"
// @Security BearerAuth
// @Router /notes/{id} [delete]
func (h *Handler) DeleteNote(c *gin.Context) {
	var note models.Note
	if err := h.db.First(&note, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		return
	}

	if err := h.db.Delete(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete note"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}
