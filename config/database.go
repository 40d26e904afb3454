package config

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"vetclinic-backend/models"
)

func ConnectDB(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Reservation{},
		&models.SMSRecord{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Slot uniqueness over active reservations only. A concurrent insert that
	// slips past the in-transaction check hits this index instead of creating
	// a double booking.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_active_slot
		ON reservations (reservation_date, reservation_time)
		WHERE status NOT IN ('cancelled', 'completed')
	`).Error; err != nil {
		return nil, fmt.Errorf("create slot index: %w", err)
	}

	return db, nil
}
