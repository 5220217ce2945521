package search

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/config"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/quota"
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

func testConfig() *config.Config {
	return &config.Config{
		MaxSearchesDefault:  100,
		MaxResultsPerSearch: 10,
		Marketplaces:        []string{"amazon"},
		ExcludedDomains:     []string{"wikipedia.org"},
	}
}

func createTestKeyword(t *testing.T, db *gorm.DB) *models.Keyword {
	country := models.Country{Name: "España", Code: "ES", Language: "es", IsActive: true}
	if err := db.Create(&country).Error; err != nil {
		t.Fatalf("Failed to create test country: %v", err)
	}
	keyword := models.Keyword{CountryID: country.ID, Text: "osmosis inversa", ResultsPerSearch: 5, IsActive: true}
	if err := db.Create(&keyword).Error; err != nil {
		t.Fatalf("Failed to create test keyword: %v", err)
	}
	return &keyword
}

func TestNormalizeDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.aguapura.es/productos", "aguapura.es"},
		{"https://tienda.filtros.es", "filtros.es"},
		{"http://shop.example.com/x?y=1", "example.com"},
		{"https://AGUAPURA.ES", "aguapura.es"},
		{"https://m.osmosis.es", "osmosis.es"},
		{"not a url at all ::", ""},
	}
	for _, tc := range cases {
		if got := NormalizeDomain(tc.in); got != tc.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProcessResultCreatesLead(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, testConfig())
	keyword := createTestKeyword(t, db)

	created, err := service.processResult(searchItem{
		Title:   "Aguas del Sur - Osmosis",
		Link:    "https://www.aguasdelsur.es/osmosis",
		Snippet: "Equipos de osmosis inversa",
	}, keyword)
	if err != nil {
		t.Fatalf("processResult failed: %v", err)
	}
	if !created {
		t.Fatal("Expected a new lead")
	}

	var lead models.Lead
	if err := db.Where("domain = ?", "aguasdelsur.es").First(&lead).Error; err != nil {
		t.Fatalf("Expected the lead to be stored: %v", err)
	}
	if lead.Bucket != models.BucketNew {
		t.Errorf("Expected bucket new, got %q", lead.Bucket)
	}
	if lead.KeywordText != "osmosis inversa" {
		t.Errorf("Expected denormalized keyword text, got %q", lead.KeywordText)
	}
	if lead.Snippet == "" {
		t.Error("Expected the snippet to be stored")
	}
}

func TestProcessResultDeduplicatesByDomain(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, testConfig())
	keyword := createTestKeyword(t, db)

	item := searchItem{Title: "Tienda", Link: "https://www.aguasdelsur.es/"}
	if created, _ := service.processResult(item, keyword); !created {
		t.Fatal("Expected first result to create a lead")
	}

	// Same domain through a different URL
	again := searchItem{Title: "Tienda", Link: "https://aguasdelsur.es/contacto"}
	created, err := service.processResult(again, keyword)
	if err != nil {
		t.Fatalf("processResult failed: %v", err)
	}
	if created {
		t.Error("Expected duplicate domain to be skipped")
	}

	var count int64
	db.Model(&models.Lead{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 lead, got %d", count)
	}
}

func TestProcessResultMarketplace(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, testConfig())
	keyword := createTestKeyword(t, db)

	db.Create(&models.Marketplace{Domain: "leroymerlin.es", Name: "Leroy Merlin", IsSystem: true})

	// Registered marketplace row
	created, err := service.processResult(searchItem{
		Title: "Osmosis", Link: "https://www.leroymerlin.es/osmosis",
	}, keyword)
	if err != nil || !created {
		t.Fatalf("Expected marketplace lead to be created, got created=%v err=%v", created, err)
	}
	var lead models.Lead
	db.Where("domain = ?", "leroymerlin.es").First(&lead)
	if lead.Bucket != models.BucketMarketplace {
		t.Errorf("Expected marketplace bucket, got %q", lead.Bucket)
	}

	// Config fragment match
	created, err = service.processResult(searchItem{
		Title: "Osmosis", Link: "https://www.amazon.es/dp/123",
	}, keyword)
	if err != nil || !created {
		t.Fatalf("Expected amazon lead, got created=%v err=%v", created, err)
	}
	db.Where("domain = ?", "amazon.es").First(&lead)
	if lead.Bucket != models.BucketMarketplace {
		t.Errorf("Expected marketplace bucket for amazon.es, got %q", lead.Bucket)
	}
}

func TestProcessResultExcludedDomain(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, testConfig())
	keyword := createTestKeyword(t, db)

	created, err := service.processResult(searchItem{
		Title: "Osmosis", Link: "https://es.wikipedia.org/wiki/Osmosis",
	}, keyword)
	if err != nil {
		t.Fatalf("processResult failed: %v", err)
	}
	if created {
		t.Error("Expected excluded domain to be skipped")
	}
}

func TestProcessResultSkipsDiscardedDomain(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, testConfig())
	keyword := createTestKeyword(t, db)

	db.Create(&models.DiscardRecord{
		LeadID: 1, CountryID: keyword.CountryID,
		Domain: "competidor.es", Reason: "Competencia",
	})

	created, err := service.processResult(searchItem{
		Title: "Competidor", Link: "https://www.competidor.es/",
	}, keyword)
	if err != nil {
		t.Fatalf("processResult failed: %v", err)
	}
	if created {
		t.Error("Expected previously discarded domain to be skipped")
	}

	var count int64
	db.Model(&models.Lead{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no leads, got %d", count)
	}
}

func TestSearchQuotaExceeded(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	service := NewService(db, cfg)
	keyword := createTestKeyword(t, db)
	var country models.Country
	db.First(&country, keyword.CountryID)

	db.Create(&models.AppSetting{Key: models.SettingMaxSearches, Value: "2"})
	for i := 0; i < 2; i++ {
		db.Create(&models.SearchLog{RunID: "r" + strconv.Itoa(i), KeywordText: keyword.Text})
	}

	_, err := service.Search(context.Background(), "run-1", keyword, &country)
	if !errors.Is(err, quota.ErrQuotaExceeded) {
		t.Errorf("Expected ErrQuotaExceeded, got %v", err)
	}
}
