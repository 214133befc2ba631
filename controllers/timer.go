package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/CodOfTrade/Sys-Ticket-sub003/db"
	"github.com/CodOfTrade/Sys-Ticket-sub003/models"
	"github.com/CodOfTrade/Sys-Ticket-sub003/redis"
	"github.com/CodOfTrade/Sys-Ticket-sub003/services"
)

func timerService() *services.TimerService {
	return &services.TimerService{
		DB:       db.DB,
		Resolver: &services.PricingResolver{DB: db.DB, Cache: redis.Client},
	}
}

// serviceError maps the service error taxonomy onto HTTP responses. A timer
// conflict includes the conflicting ticket so the UI can redirect there.
func serviceError(c *fiber.Ctx, err error) error {
	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":                  "A timer is already running on another ticket",
			"conflicting_ticket_id":  conflict.TicketID,
			"running_appointment_id": conflict.AppointmentID,
		})
	}
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": validation.Reason,
		})
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "You can only manage your own timers",
		})
	case errors.Is(err, services.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// StartTimer opens a running appointment for the logged-in technician
func StartTimer(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var input struct {
		TicketID uint                   `json:"ticket_id"`
		Type     models.AppointmentType `json:"type"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}
	if input.TicketID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ticket_id is required",
		})
	}
	if input.Type == "" {
		input.Type = models.TypeService
	}

	appointment, err := timerService().Start(c.Context(), input.TicketID, userID, input.Type)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(appointment)
}

// GetActiveTimer returns the logged-in technician's running appointment, if any
func GetActiveTimer(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	appointment, err := timerService().Active(c.Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}
	if appointment == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.JSON(appointment)
}

// StopTimer finalizes a running appointment with the supplied modality,
// coverage and overrides, computing the billed amount
func StopTimer(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	appointmentID, err := c.ParamsInt("id")
	if err != nil || appointmentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid appointment ID",
		})
	}

	var payload services.StopPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	appointment, err := timerService().Stop(c.Context(), uint(appointmentID), userID, payload)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(appointment)
}
