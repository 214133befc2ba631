package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/CodOfTrade/Sys-Ticket-sub003/db"
	"github.com/CodOfTrade/Sys-Ticket-sub003/models"
)

func setupPreviewApp(t *testing.T) *fiber.App {
	t.Helper()

	testDB, err := gorm.Open(sqlite.Open("file:controllers_test?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := testDB.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = testDB.AutoMigrate(
		&models.ServiceDesk{},
		&models.Contract{},
		&models.PricingConfig{},
		&models.PricingModalityConfig{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.DB = testDB

	app := fiber.New()
	app.Post("/billing/preview", CalculatePrice)
	return app
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return v
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func seedPreviewRate(t *testing.T) models.ServiceDesk {
	t.Helper()
	desk := models.ServiceDesk{Name: "Support"}
	if err := db.DB.Create(&desk).Error; err != nil {
		t.Fatalf("seed desk: %v", err)
	}
	config := models.PricingConfig{
		ServiceDeskID: desk.ID,
		Name:          "Standard remote",
		Active:        true,
		Modalities: []models.PricingModalityConfig{{
			Modality:                      models.ModalityRemote,
			HourlyRate:                    decimalFromString(t, "70.00"),
			MinimumCharge:                 decimalFromString(t, "70.00"),
			MinimumChargeThresholdMinutes: 60,
			ChargeExcessPerMinute:         true,
		}},
	}
	if err := db.DB.Create(&config).Error; err != nil {
		t.Fatalf("seed config: %v", err)
	}
	return desk
}

func postPreview(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/billing/preview", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestCalculatePricePreview(t *testing.T) {
	app := setupPreviewApp(t)
	desk := seedPreviewRate(t)

	resp := postPreview(t, app, `{
		"service_desk_id": `+uintString(desk.ID)+`,
		"duration_minutes": 75,
		"modality": "remote",
		"coverage_type": "billable"
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result struct {
		UnitPrice     string `json:"unit_price"`
		TotalAmount   string `json:"total_amount"`
		DurationHours string `json:"duration_hours"`
		Description   string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.TotalAmount != "87.5" {
		t.Errorf("total_amount = %s, want 87.5", result.TotalAmount)
	}
	if result.UnitPrice != "70" {
		t.Errorf("unit_price = %s, want 70", result.UnitPrice)
	}
	if result.DurationHours != "1.25" {
		t.Errorf("duration_hours = %s, want 1.25", result.DurationHours)
	}
	if result.Description == "" {
		t.Error("description is empty")
	}
}

func TestCalculatePricePreview_Warranty(t *testing.T) {
	app := setupPreviewApp(t)
	seedPreviewRate(t)

	resp := postPreview(t, app, `{
		"service_desk_id": 1,
		"duration_minutes": 500,
		"modality": "external",
		"coverage_type": "warranty",
		"is_warranty": true
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var result struct {
		TotalAmount string `json:"total_amount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.TotalAmount != "0" {
		t.Errorf("total_amount = %s, want 0", result.TotalAmount)
	}
}

func TestCalculatePricePreview_Validation(t *testing.T) {
	app := setupPreviewApp(t)
	desk := seedPreviewRate(t)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "non-positive duration",
			body: `{"service_desk_id": ` + uintString(desk.ID) + `, "duration_minutes": 0, "modality": "remote", "coverage_type": "billable"}`,
		},
		{
			name: "unknown modality",
			body: `{"service_desk_id": ` + uintString(desk.ID) + `, "duration_minutes": 30, "modality": "telepathy", "coverage_type": "billable"}`,
		},
		{
			name: "contract coverage without contract id",
			body: `{"service_desk_id": ` + uintString(desk.ID) + `, "duration_minutes": 30, "modality": "remote", "coverage_type": "contract"}`,
		},
		{
			name: "manual override without unit price",
			body: `{"service_desk_id": ` + uintString(desk.ID) + `, "duration_minutes": 30, "modality": "remote", "coverage_type": "billable", "manual_price_override": true}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postPreview(t, app, tt.body)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", resp.StatusCode)
			}
		})
	}
}

func TestCalculatePricePreview_MissingRate(t *testing.T) {
	app := setupPreviewApp(t)
	desk := seedPreviewRate(t)

	// the desk only has a remote rate
	resp := postPreview(t, app, `{
		"service_desk_id": `+uintString(desk.ID)+`,
		"duration_minutes": 30,
		"modality": "internal",
		"coverage_type": "billable"
	}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
