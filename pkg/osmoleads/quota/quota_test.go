package quota

import (
	"strconv"
	"testing"
	"time"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
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

func setMaxSearches(t *testing.T, db *gorm.DB, max int) {
	setting := models.AppSetting{Key: models.SettingMaxSearches, Value: strconv.Itoa(max)}
	if err := db.Create(&setting).Error; err != nil {
		t.Fatalf("Failed to create setting: %v", err)
	}
}

func logSearches(t *testing.T, db *gorm.DB, n int) {
	for i := 0; i < n; i++ {
		log := models.SearchLog{RunID: "test-run", KeywordText: "osmosis", ResultsCount: 1}
		if err := db.Create(&log).Error; err != nil {
			t.Fatalf("Failed to create search log: %v", err)
		}
	}
}

func TestMaxSearchesDefault(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, 100)

	if max := tracker.MaxSearches(); max != 100 {
		t.Errorf("Expected default max 100, got %d", max)
	}

	setMaxSearches(t, db, 20)
	if max := tracker.MaxSearches(); max != 20 {
		t.Errorf("Expected configured max 20, got %d", max)
	}
}

func TestRemaining(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, 100)
	setMaxSearches(t, db, 10)

	remaining, err := tracker.Remaining()
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if remaining != 10 {
		t.Errorf("Expected 10 remaining, got %d", remaining)
	}

	logSearches(t, db, 4)
	remaining, _ = tracker.Remaining()
	if remaining != 6 {
		t.Errorf("Expected 6 remaining, got %d", remaining)
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, 100)
	setMaxSearches(t, db, 5)
	logSearches(t, db, 8)

	remaining, err := tracker.Remaining()
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if remaining != 0 {
		t.Errorf("Expected 0 remaining when over quota, got %d", remaining)
	}

	ok, _ := tracker.CanSearch()
	if ok {
		t.Error("Expected CanSearch false when over quota")
	}
}

func TestQuotaExhausted(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, 100)
	setMaxSearches(t, db, 100)
	logSearches(t, db, 100)

	ok, err := tracker.CanSearch()
	if err != nil {
		t.Fatalf("CanSearch failed: %v", err)
	}
	if ok {
		t.Error("Expected CanSearch false at 100/100")
	}
}

func TestUnlimited(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, 100)
	setMaxSearches(t, db, 0)
	logSearches(t, db, 250)

	remaining, err := tracker.Remaining()
	if err != nil {
		t.Fatalf("Remaining failed: %v", err)
	}
	if remaining != Unlimited {
		t.Errorf("Expected Unlimited (-1), got %d", remaining)
	}

	ok, _ := tracker.CanSearch()
	if !ok {
		t.Error("Expected CanSearch true with no ceiling")
	}
}

func TestSearchesToday(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, 100)
	logSearches(t, db, 3)

	today, err := tracker.SearchesToday()
	if err != nil {
		t.Fatalf("SearchesToday failed: %v", err)
	}
	if today != 3 {
		t.Errorf("Expected 3 searches today, got %d", today)
	}
}

func TestSearchesTodayIgnoresYesterday(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewTracker(db, 100)
	setMaxSearches(t, db, 10)
	logSearches(t, db, 2)

	// Rows from before local midnight do not count against today
	yesterday := models.SearchLog{
		RunID: "test-run", KeywordText: "osmosis", ResultsCount: 1,
		SearchedAt: time.Now().Add(-24 * time.Hour),
	}
	if err := db.Create(&yesterday).Error; err != nil {
		t.Fatalf("Failed to create search log: %v", err)
	}
	justBeforeMidnight := models.SearchLog{
		RunID: "test-run", KeywordText: "osmosis", ResultsCount: 1,
		SearchedAt: startOfToday().Add(-time.Minute),
	}
	if err := db.Create(&justBeforeMidnight).Error; err != nil {
		t.Fatalf("Failed to create search log: %v", err)
	}

	today, err := tracker.SearchesToday()
	if err != nil {
		t.Fatalf("SearchesToday failed: %v", err)
	}
	if today != 2 {
		t.Errorf("Expected 2 searches today, got %d", today)
	}

	remaining, _ := tracker.Remaining()
	if remaining != 8 {
		t.Errorf("Expected 8 remaining, got %d", remaining)
	}
}

func startOfToday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
