package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/CodOfTrade/Sys-Ticket-sub003/controllers"
	"github.com/CodOfTrade/Sys-Ticket-sub003/middleware"
)

// SetupPricingRoutes configures pricing catalog and price preview routes
func SetupPricingRoutes(app *fiber.App) {
	pricing := app.Group("/pricing", middleware.Protected())
	pricing.Get("/configs", controllers.GetPricingConfigs)
	pricing.Get("/configs/:id", controllers.GetPricingConfig)

	app.Post("/billing/preview", middleware.Protected(), controllers.CalculatePrice)
}
