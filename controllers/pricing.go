package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/CodOfTrade/Sys-Ticket-sub003/billing"
	"github.com/CodOfTrade/Sys-Ticket-sub003/db"
	"github.com/CodOfTrade/Sys-Ticket-sub003/models"
	"github.com/CodOfTrade/Sys-Ticket-sub003/redis"
	"github.com/CodOfTrade/Sys-Ticket-sub003/services"
	"github.com/CodOfTrade/Sys-Ticket-sub003/utils"
)

// GetPricingConfigs lists pricing configurations for a service desk
func GetPricingConfigs(c *fiber.Ctx) error {
	deskID := c.QueryInt("service_desk_id")
	if deskID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "service_desk_id is required",
		})
	}

	var configs []models.PricingConfig
	err := db.DB.Preload("Modalities").
		Where("service_desk_id = ?", deskID).
		Find(&configs).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch pricing configurations",
			Error:   err.Error(),
		})
	}
	return c.JSON(configs)
}

// GetPricingConfig returns one pricing configuration with its modality rates
func GetPricingConfig(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid pricing configuration ID",
		})
	}

	var config models.PricingConfig
	if err := db.DB.Preload("Modalities").First(&config, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Pricing configuration not found",
			Error:   err.Error(),
		})
	}
	return c.JSON(config)
}

// CalculatePrice is the side-effect-free preview: it runs the same resolver
// and calculator path as a timer stop against a hypothetical duration,
// without touching persisted state
func CalculatePrice(c *fiber.Ctx) error {
	var input struct {
		ServiceDeskID       uint                   `json:"service_desk_id"`
		DurationMinutes     int                    `json:"duration_minutes"`
		Modality            models.ServiceModality `json:"modality"`
		CoverageType        models.CoverageType    `json:"coverage_type"`
		ContractID          *uint                  `json:"contract_id"`
		IsWarranty          bool                   `json:"is_warranty"`
		ManualPriceOverride bool                   `json:"manual_price_override"`
		ManualUnitPrice     *decimal.Decimal       `json:"manual_unit_price"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	if input.DurationMinutes <= 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "duration_minutes must be positive",
		})
	}
	if !input.Modality.Valid() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "invalid service modality",
		})
	}
	if !input.CoverageType.Valid() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "invalid coverage type",
		})
	}
	if input.ManualPriceOverride && input.ManualUnitPrice == nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "manual_unit_price is required when manual_price_override is set",
		})
	}
	if input.CoverageType == models.CoverageContract && input.ContractID == nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "contract_id is required when coverage_type is contract",
		})
	}

	overrides := billing.Overrides{
		IsWarranty:          input.IsWarranty,
		ManualPriceOverride: input.ManualPriceOverride,
	}
	if input.ManualUnitPrice != nil {
		overrides.ManualUnitPrice = *input.ManualUnitPrice
	}

	var rate billing.RateCard
	if !input.IsWarranty && !input.ManualPriceOverride {
		resolver := &services.PricingResolver{DB: db.DB, Cache: redis.Client}
		row, err := resolver.Resolve(c.Context(), input.ServiceDeskID, input.Modality, input.CoverageType, input.ContractID)
		if err != nil {
			return serviceError(c, err)
		}
		rate = billing.RateCard{
			HourlyRate:            row.HourlyRate,
			MinimumCharge:         row.MinimumCharge,
			ThresholdMinutes:      row.MinimumChargeThresholdMinutes,
			ChargeExcessPerMinute: row.ChargeExcessPerMinute,
		}
	}

	return c.JSON(billing.Calculate(input.DurationMinutes, rate, overrides))
}
