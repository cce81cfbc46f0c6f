package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/craftlink/marketplace-api/controllers"
	"github.com/craftlink/marketplace-api/middleware"
	"github.com/craftlink/marketplace-api/payments"
)

// SetupStripeRoutes configures the payment bridge endpoints. The webhook
// stays unauthenticated: it is verified by signature, not by token.
func SetupStripeRoutes(app *fiber.App, bridge *payments.Bridge) {
	stripeGroup := app.Group("/api/stripe")

	stripeGroup.Post("/checkout",
		middleware.Protected(),
		middleware.Authorize(PolicyTable),
		controllers.CreateCheckout(bridge))

	stripeGroup.Post("/webhook", controllers.StripeWebhook(bridge))
}
