package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/CodOfTrade/Sys-Ticket-sub003/models"
)

var testDBSeq atomic.Int64

// newTestDB opens a private in-memory database with the same schema the
// service runs against, including the partial unique index that enforces
// one running appointment per technician. A single connection keeps sqlite
// from returning busy errors under the concurrency tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&models.User{},
		&models.ServiceDesk{},
		&models.Ticket{},
		&models.Contract{},
		&models.PricingConfig{},
		&models.PricingModalityConfig{},
		&models.Appointment{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_one_running
		ON appointments (technician_id)
		WHERE timer_stopped_at IS NULL AND deleted_at IS NULL`).Error
	if err != nil {
		t.Fatalf("create partial index: %v", err)
	}
	return db
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return v
}

func seedDesk(t *testing.T, db *gorm.DB) models.ServiceDesk {
	t.Helper()
	desk := models.ServiceDesk{Name: "Support"}
	if err := db.Create(&desk).Error; err != nil {
		t.Fatalf("seed desk: %v", err)
	}
	return desk
}

func seedTicket(t *testing.T, db *gorm.DB, deskID uint) models.Ticket {
	t.Helper()
	ticket := models.Ticket{ServiceDeskID: deskID, ClientName: "ACME", Title: "printer down", Status: "open"}
	if err := db.Create(&ticket).Error; err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return ticket
}

func seedTechnician(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Name: "Tech", Email: email, Role: "technician"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed technician: %v", err)
	}
	return user
}

// seedRate creates an active pricing config on the desk with a single
// modality row and returns the config.
func seedRate(t *testing.T, db *gorm.DB, deskID uint, modality models.ServiceModality, hourly, minimum string, threshold int, perMinute bool) models.PricingConfig {
	t.Helper()
	config := models.PricingConfig{
		ServiceDeskID: deskID,
		Name:          fmt.Sprintf("Standard %s", modality),
		Active:        true,
		Modalities: []models.PricingModalityConfig{{
			Modality:                      modality,
			HourlyRate:                    mustDecimal(t, hourly),
			MinimumCharge:                 mustDecimal(t, minimum),
			MinimumChargeThresholdMinutes: threshold,
			ChargeExcessPerMinute:         perMinute,
		}},
	}
	if err := db.Create(&config).Error; err != nil {
		t.Fatalf("seed pricing config: %v", err)
	}
	return config
}

// backdateTimer rewinds a running appointment's start instant so tests can
// produce a meaningful duration without sleeping.
func backdateTimer(t *testing.T, db *gorm.DB, appointmentID uint, minutes int) {
	t.Helper()
	var appointment models.Appointment
	if err := db.First(&appointment, appointmentID).Error; err != nil {
		t.Fatalf("load appointment: %v", err)
	}
	started := appointment.TimerStartedAt.Add(-time.Duration(minutes) * time.Minute)
	if err := db.Model(&models.Appointment{}).Where("id = ?", appointmentID).Update("timer_started_at", started).Error; err != nil {
		t.Fatalf("backdate appointment: %v", err)
	}
}
