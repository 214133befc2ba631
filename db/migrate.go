package db

import (
	"fmt"
	"log"

	"github.com/CodOfTrade/Sys-Ticket-sub003/models"
)

func Migrate() {
	// Initialize DB connection
	Init()

	// Run AutoMigrate only when explicitly called
	err := DB.AutoMigrate(
		&models.User{},
		&models.ServiceDesk{},
		&models.Ticket{},
		&models.Contract{},
		&models.PricingConfig{},
		&models.PricingModalityConfig{},
		&models.Appointment{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	// One running timer per technician, enforced at the storage layer so the
	// invariant holds across service instances.
	err = DB.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_one_running
		ON appointments (technician_id)
		WHERE timer_stopped_at IS NULL AND deleted_at IS NULL`).Error
	if err != nil {
		log.Fatal("Failed to create running-timer index: ", err)
	}

	fmt.Println("✅ Migrations applied successfully!")
}
