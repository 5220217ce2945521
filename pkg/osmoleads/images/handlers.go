package images

import (
	"io"
	"net/http"
	"strings"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/config"
	"github.com/gin-gonic/gin"
)

// maxImageBytes caps uploaded images sent to the Vision API
const maxImageBytes = 5 * 1024 * 1024

// Handler handles image search requests
type Handler struct {
	vision *VisionClient
}

// NewHandler creates a new images handler
func NewHandler(cfg *config.Config) *Handler {
	return &Handler{vision: NewVisionClient(cfg.GoogleAPIKey)}
}

// OCRResponse holds the text recognized in an image
type OCRResponse struct {
	Text string `json:"text"`
}

func readImage(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return nil, false
	}
	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be an image"})
		return nil, false
	}
	if fileHeader.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large (max 5MB)"})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil || len(content) > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large (max 5MB)"})
		return nil, false
	}
	return content, true
}

// Search runs a reverse image lookup on an uploaded picture
// @Summary Search by image
// @Tags images
// @Accept mpfd
// @Produce json
// @Param file formData file true "Image (max 5MB)"
// @Success 200 {object} WebDetection
// @Failure 400 {object} map[string]string "Not an image or too large"
// @Failure 502 {object} map[string]string "Vision API failure"
// @Security BearerAuth
// @Router /images/search [post]
func (h *Handler) Search(c *gin.Context) {
	content, ok := readImage(c)
	if !ok {
		return
	}

	detection, err := h.vision.DetectWeb(c.Request.Context(), content)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image search failed"})
		return
	}

	c.JSON(http.StatusOK, detection)
}

// OCR extracts the text printed in an uploaded picture
// @Summary Extract text from an image
// @Tags images
// @Accept mpfd
// @Produce json
// @Param file formData file true "Image (max 5MB)"
// @Success 200 {object} OCRResponse
// @Failure 400 {object} map[string]string "Not an image or too large"
// @Failure 502 {object} map[string]string "Vision API failure"
// @Security BearerAuth
// @Router /images/ocr [post]
func (h *Handler) OCR(c *gin.Context) {
	content, ok := readImage(c)
	if !ok {
		return
	}

	text, err := h.vision.ExtractText(c.Request.Context(), content)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Text extraction failed"})
		return
	}

	c.JSON(http.StatusOK, OCRResponse{Text: text})
}

// RegisterRoutes registers image routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/images/search", h.Search)
	rg.POST("/images/ocr", h.OCR)
}
