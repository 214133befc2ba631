package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CodOfTrade/Sys-Ticket-sub003/controllers"
)

// SetupAuthRoutes configures registration and login
func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth")
	auth.Post("/register", controllers.Register)
	auth.Post("/login", controllers.Login)
}
