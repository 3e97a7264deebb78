package db

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"goaltrack/internal/config"
	"goaltrack/internal/goal"
	"goaltrack/internal/report"
	"goaltrack/internal/user"
)

var DB *gorm.DB

func Init(cfg *config.Config) error {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{})
	if err != nil {
		return err
	}

	// Auto-migrate user model
	if err := db.AutoMigrate(&user.User{}); err != nil {
		return err
	}

	// Auto-migrate goal tracking models
	if err := db.AutoMigrate(&goal.Goal{}, &goal.DailyCard{}, &goal.ProgressRecord{}); err != nil {
		return err
	}

	// Auto-migrate report and memo models
	if err := db.AutoMigrate(&report.Report{}, &report.Memo{}); err != nil {
		return err
	}

	DB = db
	log.Printf("Database connected and migrated")
	return nil
}
