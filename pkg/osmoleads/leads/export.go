package leads

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/export"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) exportQuery(countryID uint) *gorm.DB {
	return h.db.Preload("Status").Preload("Notes").
		Where("country_id = ?", countryID).Order("found_at DESC")
}

// Export downloads one bucket of a country as a styled xlsx file
// @Summary Export a bucket to Excel
// @Tags leads
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param country_id query int true "Country ID"
// @Param bucket query string true "Bucket to export"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string "Invalid bucket"
// @Security BearerAuth
// @Router /leads/export [get]
func (h *Handler) Export(c *gin.Context) {
	countryID, err := strconv.ParseUint(c.Query("country_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country_id query parameter is required"})
		return
	}
	bucket := models.Bucket(c.Query("bucket"))
	if !bucket.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bucket"})
		return
	}

	var leads []models.Lead
	if err := h.exportQuery(uint(countryID)).Where("bucket = ?", bucket).
		Find(&leads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leads"})
		return
	}

	f, err := export.Workbook(export.BucketTitle(bucket), leads)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}
	defer f.Close()

	h.writeWorkbook(c, f, fmt.Sprintf("osmoleads_%s_%s.xlsx",
		bucket, time.Now().Format("2006-01-02")))
}

// ExportAll downloads every bucket of a country, one sheet per bucket
// @Summary Export all buckets to Excel
// @Tags leads
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param country_id query int true "Country ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /leads/export-all [get]
func (h *Handler) ExportAll(c *gin.Context) {
	countryID, err := strconv.ParseUint(c.Query("country_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country_id query parameter is required"})
		return
	}

	var leads []models.Lead
	if err := h.exportQuery(uint(countryID)).Find(&leads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leads"})
		return
	}

	byBucket := make(map[models.Bucket][]models.Lead)
	for _, lead := range leads {
		byBucket[lead.Bucket] = append(byBucket[lead.Bucket], lead)
	}

	f, err := export.WorkbookAll(byBucket)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}
	defer f.Close()

	h.writeWorkbook(c, f, fmt.Sprintf("osmoleads_completo_%s.xlsx",
		time.Now().Format("2006-01-02")))
}

func (h *Handler) writeWorkbook(c *gin.Context, f *excelize.File, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", xlsxContentType)
	if _, err := f.WriteTo(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}
