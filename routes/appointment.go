package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CodOfTrade/Sys-Ticket-sub003/controllers"
	"github.com/CodOfTrade/Sys-Ticket-sub003/middleware"
)

// SetupAppointmentRoutes configures appointment reporting and approval routes
func SetupAppointmentRoutes(app *fiber.App) {
	app.Get("/tickets/:id/appointments", middleware.Protected(), controllers.GetTicketAppointments)
	app.Post("/appointments/:id/approve", middleware.Protected(), controllers.ApproveAppointment)
}
