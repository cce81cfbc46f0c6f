package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/craftlink/marketplace-api/cron"
	"github.com/craftlink/marketplace-api/db"
	"github.com/craftlink/marketplace-api/payments"
	appredis "github.com/craftlink/marketplace-api/redis"
	"github.com/craftlink/marketplace-api/routes"
	"github.com/craftlink/marketplace-api/scheduling"
)

func main() {
	app := fiber.New()
	if os.Getenv("RUN_MIGRATIONS") == "true" {
		db.Migrate()
	} else {
		db.Init()
	}
	appredis.InitRedis()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	resolver := scheduling.NewResolver(db.DB)
	bridge := payments.NewBridge(
		os.Getenv("STRIPE_SECRET_KEY"),
		os.Getenv("STRIPE_WEBHOOK_SECRET"),
		db.DB,
		appredis.NewLedger(appredis.Client),
	)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.SetupAuthRoutes(app)
	routes.SetupRBACRoutes(app)
	routes.SetupBuilderRoutes(app)
	routes.SetupSchedulingRoutes(app, resolver)
	routes.SetupStripeRoutes(app, bridge)

	cron.StartCronJobs()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Fatal(app.Listen(":" + port))
}
