package keywords

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(db).RegisterRoutes(r.Group("/api"))
	return r
}

func createTestCountry(t *testing.T, db *gorm.DB) models.Country {
	country := models.Country{Name: "España", Code: "ES", Language: "es", IsActive: true}
	if err := db.Create(&country).Error; err != nil {
		t.Fatalf("Failed to create test country: %v", err)
	}
	return country
}

func TestCreateKeyword(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	country := createTestCountry(t, db)

	body, _ := json.Marshal(CreateKeywordRequest{CountryID: country.ID, Text: "osmosis inversa"})
	req, _ := http.NewRequest("POST", "/api/keywords", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var keyword models.Keyword
	json.Unmarshal(resp.Body.Bytes(), &keyword)
	if keyword.Text != "osmosis inversa" {
		t.Errorf("Expected text 'osmosis inversa', got %q", keyword.Text)
	}
	if !keyword.IsActive {
		t.Error("Expected new keyword to be active")
	}
	if keyword.Category != "general" {
		t.Errorf("Expected default category 'general', got %q", keyword.Category)
	}
	if keyword.ResultsPerSearch != 5 {
		t.Errorf("Expected default results_per_search 5, got %d", keyword.ResultsPerSearch)
	}
}

func TestCreateKeywordBlankText(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	country := createTestCountry(t, db)

	body, _ := json.Marshal(CreateKeywordRequest{CountryID: country.ID, Text: "   "})
	req, _ := http.NewRequest("POST", "/api/keywords", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for blank text, got %d", resp.Code)
	}
}

func TestCreateKeywordResultsBounds(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	country := createTestCountry(t, db)

	for _, bad := range []int{-1, 11, 50} {
		body, _ := json.Marshal(CreateKeywordRequest{
			CountryID: country.ID, Text: "descalcificador", ResultsPerSearch: bad,
		})
		req, _ := http.NewRequest("POST", "/api/keywords", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)

		if resp.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for results_per_search=%d, got %d", bad, resp.Code)
		}
	}
}

func TestCreateKeywordDuplicate(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	country := createTestCountry(t, db)

	keyword := models.Keyword{CountryID: country.ID, Text: "osmosis", IsActive: true}
	db.Create(&keyword)

	// Same text, case-insensitive
	body, _ := json.Marshal(CreateKeywordRequest{CountryID: country.ID, Text: "OSMOSIS"})
	req, _ := http.NewRequest("POST", "/api/keywords", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate, got %d", resp.Code)
	}

	// Same text on another country is fine
	other := models.Country{Name: "Francia", Code: "FR", Language: "fr", IsActive: true}
	db.Create(&other)
	body, _ = json.Marshal(CreateKeywordRequest{CountryID: other.ID, Text: "osmosis"})
	req, _ = http.NewRequest("POST", "/api/keywords", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Errorf("Expected status 201 for same text in another country, got %d", resp.Code)
	}
}

func TestToggleKeywordKeepsCounters(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	country := createTestCountry(t, db)

	keyword := models.Keyword{
		CountryID: country.ID, Text: "osmosis", IsActive: true,
		TotalSearches: 7, TotalResults: 42,
	}
	db.Create(&keyword)

	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/keywords/%d/toggle", keyword.ID), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var stored models.Keyword
	db.First(&stored, keyword.ID)
	if stored.IsActive {
		t.Error("Expected keyword to be inactive after toggle")
	}
	if stored.TotalSearches != 7 || stored.TotalResults != 42 {
		t.Errorf("Toggle reset counters: searches=%d results=%d",
			stored.TotalSearches, stored.TotalResults)
	}
}

func TestListKeywordsActiveOnly(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	country := createTestCountry(t, db)

	db.Create(&models.Keyword{CountryID: country.ID, Text: "activa", IsActive: true})
	db.Create(&models.Keyword{CountryID: country.ID, Text: "apagada", IsActive: false})

	req, _ := http.NewRequest("GET",
		fmt.Sprintf("/api/keywords?country_id=%d&active_only=true", country.ID), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var keywords []models.Keyword
	json.Unmarshal(resp.Body.Bytes(), &keywords)
	if len(keywords) != 1 || keywords[0].Text != "activa" {
		t.Errorf("Expected only the active keyword, got %+v", keywords)
	}
}

func TestDeleteKeywordKeepsLeadText(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	country := createTestCountry(t, db)

	keyword := models.Keyword{CountryID: country.ID, Text: "osmosis", IsActive: true}
	db.Create(&keyword)
	lead := models.Lead{
		CountryID:   country.ID,
		KeywordID:   &keyword.ID,
		KeywordText: keyword.Text,
		Name:        "Aguas del Sur",
		Domain:      "aguasdelsur.es",
		Bucket:      models.BucketNew,
	}
	db.Create(&lead)

	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/keywords/%d", keyword.ID), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var stored models.Lead
	db.First(&stored, lead.ID)
	if stored.KeywordID != nil {
		t.Error("Expected lead keyword_id to be cleared")
	}
	if stored.KeywordText != "osmosis" {
		t.Errorf("Expected lead to keep keyword text, got %q", stored.KeywordText)
	}
}
