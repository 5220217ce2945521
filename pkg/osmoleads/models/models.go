package models

import "gorm.io/gorm"

// AllModels returns all models for migration.
// Country must be migrated first as most other models hang off it.
func AllModels() []interface{} {
	return []interface{}{
		&Country{},
		&Keyword{},
		&LeadStatus{},
		&Lead{},
		&Note{},
		&Suggestion{},
		&Marketplace{},
		&SearchLog{},
		&DiscardRecord{},
		&AppSetting{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
