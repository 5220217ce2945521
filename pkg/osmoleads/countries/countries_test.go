package countries

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

func TestCreateCountry(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	body, _ := json.Marshal(CreateCountryRequest{Name: "España", Code: "es", Language: "ES"})
	req, _ := http.NewRequest("POST", "/api/countries", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var country CountryResponse
	json.Unmarshal(resp.Body.Bytes(), &country)
	if country.Code != "ES" {
		t.Errorf("Expected code uppercased to ES, got %q", country.Code)
	}
	if country.Language != "es" {
		t.Errorf("Expected language lowercased to es, got %q", country.Language)
	}
	if !country.IsActive {
		t.Error("Expected new country to be active")
	}

	var stored models.Country
	db.First(&stored, country.ID)
	parsed, err := time.Parse(time.RFC3339, country.CreatedAt)
	if err != nil {
		t.Fatalf("Expected an RFC3339 created_at, got %q: %v", country.CreatedAt, err)
	}
	if !parsed.Equal(stored.CreatedAt.Truncate(time.Second)) {
		t.Errorf("Expected created_at %v, got %v", stored.CreatedAt.UTC(), parsed)
	}
}

func TestCreateCountryDuplicate(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	db.Create(&models.Country{Name: "España", Code: "ES", IsActive: true})

	body, _ := json.Marshal(CreateCountryRequest{Name: "España", Code: "ES"})
	req, _ := http.NewRequest("POST", "/api/countries", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}
}

func TestGetCountryCounts(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	country := models.Country{Name: "España", Code: "ES", IsActive: true}
	db.Create(&country)
	db.Create(&models.Keyword{CountryID: country.ID, Text: "osmosis", IsActive: true})
	db.Create(&models.Keyword{CountryID: country.ID, Text: "filtros", IsActive: false})
	db.Create(&models.Lead{CountryID: country.ID, Name: "Tienda", Domain: "uno.es", Bucket: models.BucketNew})

	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/countries/%d", country.ID), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var result CountryResponse
	json.Unmarshal(resp.Body.Bytes(), &result)
	if result.KeywordsCount != 2 {
		t.Errorf("Expected 2 keywords, got %d", result.KeywordsCount)
	}
	if result.LeadsCount != 1 {
		t.Errorf("Expected 1 lead, got %d", result.LeadsCount)
	}
}

func TestDeleteCountryCascades(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	country := models.Country{Name: "España", Code: "ES", IsActive: true}
	db.Create(&country)
	keyword := models.Keyword{CountryID: country.ID, Text: "osmosis", IsActive: true}
	db.Create(&keyword)
	lead := models.Lead{CountryID: country.ID, Name: "Tienda", Domain: "uno.es", Bucket: models.BucketNew}
	db.Create(&lead)
	db.Create(&models.Note{LeadID: lead.ID, Content: "nota"})
	db.Create(&models.Suggestion{CountryID: country.ID, Text: "filtros"})

	req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/countries/%d", country.ID), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	for name, model := range map[string]interface{}{
		"leads":       &models.Lead{},
		"keywords":    &models.Keyword{},
		"notes":       &models.Note{},
		"suggestions": &models.Suggestion{},
	} {
		var count int64
		db.Model(model).Count(&count)
		if count != 0 {
			t.Errorf("Expected %s to be deleted with the country, got %d", name, count)
		}
	}
}

func TestUpdateCountry(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	country := models.Country{Name: "España", Code: "ES", IsActive: true}
	db.Create(&country)

	inactive := false
	body, _ := json.Marshal(UpdateCountryRequest{IsActive: &inactive})
	req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/countries/%d", country.ID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var stored models.Country
	db.First(&stored, country.ID)
	if stored.IsActive {
		t.Error("Expected country to be inactive")
	}
	if stored.Name != "España" {
		t.Errorf("Update changed the name: %q", stored.Name)
	}
}
