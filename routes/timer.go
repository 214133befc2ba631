package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CodOfTrade/Sys-Ticket-sub003/controllers"
	"github.com/CodOfTrade/Sys-Ticket-sub003/middleware"
)

// SetupTimerRoutes configures the appointment timer routes
func SetupTimerRoutes(app *fiber.App) {
	timers := app.Group("/timers", middleware.Protected())
	timers.Post("/", controllers.StartTimer)
	timers.Get("/active", controllers.GetActiveTimer)
	timers.Post("/:id/stop", controllers.StopTimer)
}
