package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/CodOfTrade/Sys-Ticket-sub003/cron"
	"github.com/CodOfTrade/Sys-Ticket-sub003/db"
	"github.com/CodOfTrade/Sys-Ticket-sub003/redis"
	"github.com/CodOfTrade/Sys-Ticket-sub003/routes"
)

func main() {
	app := fiber.New()
	db.Migrate()
	redis.InitRedis()
	cron.StartCronJobs()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Appointment timer & billing engine")
	})
	routes.SetupAuthRoutes(app)
	routes.SetupTimerRoutes(app)
	routes.SetupPricingRoutes(app)
	routes.SetupAppointmentRoutes(app)

	app.Listen(":8000")
}
