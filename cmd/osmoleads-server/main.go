package main

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/auth"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/config"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/countries"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/database"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/images"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/keywords"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/leads"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/search"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/settings"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/statuses"
	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/suggestions"
)

// @title Osmoleads API
// @version 1.0
// @description Lead discovery and triage backend for Google-sourced commercial leads.

// @host localhost:8000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token. Format: "Bearer {token}"

func main() {
	cfg := config.Load()

	// Connect to database
	if err := database.Connect(cfg.DBPath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Seed statuses, marketplaces and the quota setting on first boot
	if err := seedDefaults(database.GetDB(), cfg); err != nil {
		log.Fatalf("Failed to seed defaults: %v", err)
	}

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "osmoleads",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(cfg.PINHash, cfg.TokenDuration)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Everything else requires a verified PIN session
		protected := api.Group("", auth.AuthMiddleware())

		countriesHandler := countries.NewHandler(database.GetDB())
		countriesHandler.RegisterRoutes(protected)

		keywordsHandler := keywords.NewHandler(database.GetDB())
		keywordsHandler.RegisterRoutes(protected)

		leadsHandler := leads.NewHandler(database.GetDB(), cfg)
		leadsHandler.RegisterRoutes(protected)

		statusesHandler := statuses.NewHandler(database.GetDB())
		statusesHandler.RegisterRoutes(protected)

		suggestionsHandler := suggestions.NewHandler(database.GetDB(), cfg)
		suggestionsHandler.RegisterRoutes(protected)

		searchHandler := search.NewHandler(database.GetDB(), cfg)
		searchHandler.RegisterRoutes(protected)

		settingsHandler := settings.NewHandler(database.GetDB())
		settingsHandler.RegisterRoutes(protected)

		imagesHandler := images.NewHandler(cfg)
		imagesHandler.RegisterRoutes(protected)
	}

	log.Printf("Starting Osmoleads server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// defaultStatuses are the pipeline stages every installation starts
// with. They are marked as system rows so the API refuses to edit them.
var defaultStatuses = []models.LeadStatus{
	{Name: "Pendiente", Color: "#F59E0B", Icon: "clock", SortOrder: 1, IsDefault: true, IsSystem: true},
	{Name: "Competencia", Color: "#EF4444", Icon: "swords", SortOrder: 2, IsSystem: true},
	{Name: "Cliente", Color: "#10B981", Icon: "handshake", SortOrder: 3, IsSystem: true},
	{Name: "En gestión", Color: "#3B82F6", Icon: "phone", SortOrder: 4, IsSystem: true},
	{Name: "Captado", Color: "#8B5CF6", Icon: "star", SortOrder: 5, IsSystem: true},
}

// seedDefaults populates system statuses, the built-in marketplace list
// and the quota setting. Existing rows are left alone so operator edits
// survive restarts.
func seedDefaults(db *gorm.DB, cfg *config.Config) error {
	for _, status := range defaultStatuses {
		var existing models.LeadStatus
		if err := db.Where("name = ?", status.Name).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&status).Error; err != nil {
			return err
		}
	}

	for _, domain := range cfg.Marketplaces {
		var existing models.Marketplace
		if err := db.Where("domain = ?", domain).First(&existing).Error; err == nil {
			continue
		}
		marketplace := models.Marketplace{Domain: domain, Name: domain, IsSystem: true}
		if err := db.Create(&marketplace).Error; err != nil {
			return err
		}
	}

	var setting models.AppSetting
	if err := db.Where("key = ?", models.SettingMaxSearches).First(&setting).Error; err != nil {
		setting = models.AppSetting{
			Key:         models.SettingMaxSearches,
			Value:       strconv.Itoa(cfg.MaxSearchesDefault),
			Description: "Daily Google search limit, 0 disables the limit",
		}
		if err := db.Create(&setting).Error; err != nil {
			return err
		}
		log.Printf("Seeded %s = %s", setting.Key, setting.Value)
	}

	return nil
}
