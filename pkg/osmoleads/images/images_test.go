package images

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/config"
	"github.com/gin-gonic/gin"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	handler := NewHandler(&config.Config{GoogleAPIKey: "test-key"})
	handler.RegisterRoutes(api)
	return r
}

func multipartUpload(t *testing.T, fieldName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="upload.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("Failed to create multipart part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write multipart content: %v", err)
	}
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestImageSearchMissingFile(t *testing.T) {
	router := setupTestRouter()

	body, contentType := multipartUpload(t, "picture", "image/png", []byte("png-bytes"))
	req, _ := http.NewRequest("POST", "/api/images/search", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestImageSearchRejectsNonImage(t *testing.T) {
	router := setupTestRouter()

	body, contentType := multipartUpload(t, "file", "application/pdf", []byte("%PDF-1.4"))
	req, _ := http.NewRequest("POST", "/api/images/search", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestOCRRejectsNonImage(t *testing.T) {
	router := setupTestRouter()

	body, contentType := multipartUpload(t, "file", "text/plain", []byte("not an image"))
	req, _ := http.NewRequest("POST", "/api/images/ocr", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestImageSearchRejectsOversized(t *testing.T) {
	router := setupTestRouter()

	oversized := bytes.Repeat([]byte{0x89}, maxImageBytes+1)
	body, contentType := multipartUpload(t, "file", "image/png", oversized)
	req, _ := http.NewRequest("POST", "/api/images/search", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}
