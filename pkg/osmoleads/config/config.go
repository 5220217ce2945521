// Package config loads application configuration from the environment,
// with a .env file picked up when present.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds everything the server needs from the environment.
type Config struct {
	DBPath string
	Port   string

	// Access PIN, stored as a bcrypt hash
	PINHash       string
	TokenDuration time.Duration

	// Google APIs
	GoogleAPIKey         string
	GoogleSearchEngineID string

	// Limits
	MaxSearchesDefault  int
	MaxResultsPerSearch int

	// Scraping
	ScrapeTimeout time.Duration
	ScrapeDelay   time.Duration
	UserAgent     string

	// Domains matched as substrings against discovered domains
	Marketplaces    []string
	ExcludedDomains []string
}

// Load reads configuration from the environment. Missing values fall back
// to development defaults.
func Load() *Config {
	// Not an error if absent; env vars may be set directly
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:               getEnv("OSMOLEADS_DB_PATH", "osmoleads.db"),
		Port:                 getEnv("PORT", "8000"),
		PINHash:              os.Getenv("OSMOLEADS_PIN_HASH"),
		TokenDuration:        time.Duration(getEnvInt("OSMOLEADS_PIN_EXPIRY_HOURS", 24)) * time.Hour,
		GoogleAPIKey:         os.Getenv("GOOGLE_API_KEY"),
		GoogleSearchEngineID: os.Getenv("GOOGLE_SEARCH_ENGINE_ID"),
		MaxSearchesDefault:   getEnvInt("OSMOLEADS_MAX_SEARCHES", 100),
		MaxResultsPerSearch:  10,
		ScrapeTimeout:        time.Duration(getEnvInt("OSMOLEADS_SCRAPING_TIMEOUT", 10)) * time.Second,
		ScrapeDelay:          500 * time.Millisecond,
		UserAgent:            getEnv("OSMOLEADS_USER_AGENT", "Osmoleads Bot/1.0 (Contact: admin@osmoleads.com)"),
		Marketplaces:         defaultMarketplaces,
		ExcludedDomains:      defaultExcludedDomains,
	}

	if cfg.PINHash == "" {
		// Development only; set OSMOLEADS_PIN_HASH in production
		pin := getEnv("OSMOLEADS_PIN", "Osmo1980")
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash access PIN: %v", err)
		}
		cfg.PINHash = string(hash)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// Marketplace name fragments classified automatically at discovery,
// on top of the marketplace rows in the database.
var defaultMarketplaces = []string{
	"amazon", "ebay", "aliexpress", "alibaba", "mercadolibre",
	"leroymerlin", "leroy-merlin", "bauhaus", "bricomart",
	"mediamarkt", "media-markt", "pccomponentes", "elcorteingles",
	"carrefour", "wallapop", "milanuncios", "fnac", "worten",
	"manomano", "bricodepot", "bricor", "aki",
}

// Domains never stored as leads
var defaultExcludedDomains = []string{
	"youtube.com", "facebook.com", "instagram.com", "twitter.com",
	"linkedin.com", "tiktok.com", "pinterest.com", "wikipedia.org",
	"google.com", "bing.com", "yahoo.com", "scribd.com",
}
