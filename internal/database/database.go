package database

import (
	"launchpad-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN. PreferSimpleProtocol disables prepared
// statement caching to avoid 42P05 ("prepared statement already exists") when
// using connection poolers (e.g. PgBouncer, Supabase, Render).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for every campaign model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Project{},
		&models.ProjectDetails{},
		&models.Evaluation{},
		&models.Bid{},
		&models.Contribution{},
		&models.Balance{},
		&models.Identity{},
		&models.DidWinningBid{},
		&models.DidUsdTotal{},
		&models.ProjectEvent{},
		&models.ChainState{},
	)
}
