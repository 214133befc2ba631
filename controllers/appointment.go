package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CodOfTrade/Sys-Ticket-sub003/db"
	"github.com/CodOfTrade/Sys-Ticket-sub003/models"
)

// GetTicketAppointments lists the finalized and running appointments of one
// ticket, newest first. Finalized rows are what billing aggregation consumes.
func GetTicketAppointments(c *fiber.Ctx) error {
	ticketID, err := c.ParamsInt("id")
	if err != nil || ticketID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid ticket ID",
		})
	}

	var ticket models.Ticket
	if err := db.DB.First(&ticket, ticketID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Ticket not found",
		})
	}

	var appointments []models.Appointment
	err = db.DB.Preload("Technician").
		Where("ticket_id = ?", ticketID).
		Order("timer_started_at desc").
		Find(&appointments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch appointments",
		})
	}

	return c.JSON(fiber.Map{
		"ticket_id":    ticket.ID,
		"appointments": appointments,
		"count":        len(appointments),
	})
}

// ApproveAppointment stamps a finalized appointment as approved. The
// computed amount is never modified.
func ApproveAppointment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	role, ok := c.Locals("role").(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User role not found in context",
		})
	}
	if role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Access denied. Only admins can approve appointments.",
		})
	}

	appointmentID, err := c.ParamsInt("id")
	if err != nil || appointmentID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid appointment ID",
		})
	}

	appointment, err := timerService().Approve(c.Context(), uint(appointmentID), userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Appointment approved",
		"appointment": appointment,
	})
}
