package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/CodOfTrade/Sys-Ticket-sub003/billing"
	"github.com/CodOfTrade/Sys-Ticket-sub003/models"
)

// TimerService owns the appointment timer lifecycle and the invariant that a
// technician has at most one running timer across all tickets. The invariant
// is backed by a partial unique index on appointments(technician_id) where
// timer_stopped_at is null, so it holds across service instances; the
// in-transaction re-check below only exists to produce a useful conflict
// response.
type TimerService struct {
	DB       *gorm.DB
	Resolver *PricingResolver
}

// StopPayload carries the finalization inputs supplied when a timer stops.
type StopPayload struct {
	Modality            models.ServiceModality `json:"modality"`
	CoverageType        models.CoverageType    `json:"coverage_type"`
	ContractID          *uint                  `json:"contract_id"`
	IsWarranty          bool                   `json:"is_warranty"`
	ManualPriceOverride bool                   `json:"manual_price_override"`
	ManualUnitPrice     *decimal.Decimal       `json:"manual_unit_price"`
}

// Start opens a running appointment for the technician on the given ticket.
// Exactly one concurrent Start per technician can succeed; the rest receive
// a ConflictError naming the ticket that owns the running timer.
func (s *TimerService) Start(ctx context.Context, ticketID, technicianID uint, apptType models.AppointmentType) (*models.Appointment, error) {
	if !apptType.Valid() {
		return nil, validationf("invalid appointment type %q", apptType)
	}

	var ticket models.Ticket
	if err := s.DB.WithContext(ctx).First(&ticket, ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ticket %d: %w", ticketID, ErrNotFound)
		}
		return nil, err
	}

	appointment := models.Appointment{
		TicketID:       ticketID,
		TechnicianID:   technicianID,
		Type:           apptType,
		TimerStartedAt: time.Now(),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var running models.Appointment
		err := tx.Where("technician_id = ? AND timer_stopped_at IS NULL", technicianID).
			First(&running).Error
		if err == nil {
			return &ConflictError{AppointmentID: running.ID, TicketID: running.TicketID}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		// Two concurrent starts can both pass the re-check; the partial
		// unique index decides the winner and the loser lands here.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if conflict := s.runningConflict(ctx, technicianID); conflict != nil {
				return nil, conflict
			}
		}
		return nil, err
	}
	return &appointment, nil
}

func (s *TimerService) runningConflict(ctx context.Context, technicianID uint) *ConflictError {
	var running models.Appointment
	err := s.DB.WithContext(ctx).
		Where("technician_id = ? AND timer_stopped_at IS NULL", technicianID).
		First(&running).Error
	if err != nil {
		return nil
	}
	return &ConflictError{AppointmentID: running.ID, TicketID: running.TicketID}
}

// Active returns the technician's running appointment, or nil when none.
func (s *TimerService) Active(ctx context.Context, technicianID uint) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.DB.WithContext(ctx).Preload("Ticket").
		Where("technician_id = ? AND timer_stopped_at IS NULL", technicianID).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// Stop finalizes a running appointment: it fixes the stop instant and
// duration, resolves pricing (unless warranty or manual override bypass the
// catalog), computes the amount and writes the finalized record. The write
// is a compare-and-set on timer_stopped_at IS NULL, so a second concurrent
// Stop loses with ErrInvalidState instead of double-billing.
func (s *TimerService) Stop(ctx context.Context, appointmentID, technicianID uint, payload StopPayload) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.DB.WithContext(ctx).First(&appointment, appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("appointment %d: %w", appointmentID, ErrNotFound)
		}
		return nil, err
	}
	if appointment.TechnicianID != technicianID {
		return nil, ErrForbidden
	}
	if !appointment.Running() {
		return nil, ErrInvalidState
	}

	if !payload.Modality.Valid() {
		return nil, validationf("invalid service modality %q", payload.Modality)
	}
	if !payload.CoverageType.Valid() {
		return nil, validationf("invalid coverage type %q", payload.CoverageType)
	}
	if payload.ManualPriceOverride && payload.ManualUnitPrice == nil {
		return nil, validationf("manual_unit_price is required when manual_price_override is set")
	}

	var ticket models.Ticket
	if err := s.DB.WithContext(ctx).First(&ticket, appointment.TicketID).Error; err != nil {
		return nil, err
	}

	stoppedAt := time.Now()
	durationMinutes := int(stoppedAt.Sub(appointment.TimerStartedAt).Minutes())
	if durationMinutes <= 0 {
		return nil, validationf("appointment duration must be positive, got %d minutes", durationMinutes)
	}

	overrides := billing.Overrides{
		IsWarranty:          payload.IsWarranty,
		ManualPriceOverride: payload.ManualPriceOverride,
	}
	if payload.ManualUnitPrice != nil {
		overrides.ManualUnitPrice = *payload.ManualUnitPrice
	}

	// Warranty and manual override bypass the catalog entirely; modality and
	// coverage are kept as descriptive metadata only. The contract
	// requirement for contract coverage still applies, so it is validated
	// inside Resolve either way.
	var rate billing.RateCard
	var pricingConfigID *uint
	if payload.IsWarranty || payload.ManualPriceOverride {
		if payload.CoverageType == models.CoverageContract && payload.ContractID == nil {
			return nil, validationf("contract_id is required when coverage_type is contract")
		}
	} else {
		row, err := s.Resolver.Resolve(ctx, ticket.ServiceDeskID, payload.Modality, payload.CoverageType, payload.ContractID)
		if err != nil {
			return nil, err
		}
		rate = billing.RateCard{
			HourlyRate:            row.HourlyRate,
			MinimumCharge:         row.MinimumCharge,
			ThresholdMinutes:      row.MinimumChargeThresholdMinutes,
			ChargeExcessPerMinute: row.ChargeExcessPerMinute,
		}
		pricingConfigID = &row.PricingConfigID
	}

	result := billing.Calculate(durationMinutes, rate, overrides)

	startedAt := appointment.TimerStartedAt
	day := time.Date(startedAt.Year(), startedAt.Month(), startedAt.Day(), 0, 0, 0, 0, startedAt.Location())

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		update := tx.Model(&models.Appointment{}).
			Where("id = ? AND timer_stopped_at IS NULL", appointment.ID).
			Updates(map[string]interface{}{
				"timer_stopped_at":      stoppedAt,
				"appointment_date":      day,
				"start_time":            startedAt,
				"end_time":              stoppedAt,
				"duration_minutes":      durationMinutes,
				"service_modality":      payload.Modality,
				"coverage_type":         payload.CoverageType,
				"contract_id":           payload.ContractID,
				"pricing_config_id":     pricingConfigID,
				"unit_price":            result.UnitPrice,
				"total_amount":          result.TotalAmount,
				"manual_price_override": payload.ManualPriceOverride,
				"manual_unit_price":     payload.ManualUnitPrice,
				"is_warranty":           payload.IsWarranty,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return ErrInvalidState
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).Preload("Ticket").First(&appointment, appointment.ID).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Approve stamps a finalized appointment as approved. The computed amount is
// never touched; an appointment that is still running or already approved is
// ErrInvalidState.
func (s *TimerService) Approve(ctx context.Context, appointmentID, approverID uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.DB.WithContext(ctx).First(&appointment, appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("appointment %d: %w", appointmentID, ErrNotFound)
		}
		return nil, err
	}

	update := s.DB.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND timer_stopped_at IS NOT NULL AND approved_at IS NULL", appointmentID).
		Updates(map[string]interface{}{
			"approved_by": approverID,
			"approved_at": time.Now(),
		})
	if update.Error != nil {
		return nil, update.Error
	}
	if update.RowsAffected == 0 {
		return nil, ErrInvalidState
	}

	if err := s.DB.WithContext(ctx).First(&appointment, appointmentID).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}
