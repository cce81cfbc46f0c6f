package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/craftlink/marketplace-api/controllers"
	"github.com/craftlink/marketplace-api/middleware"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App) {
	auth := app.Group("/auth")

	// Public routes
	auth.Post("/register", controllers.Register)
	auth.Post("/login", controllers.Login)
	auth.Post("/refresh", controllers.RefreshToken)
	auth.Post("/verify/request", controllers.RequestVerification)
	auth.Post("/verify", controllers.VerifyEmail)

	// Protected routes
	auth.Get("/me", middleware.Protected(), controllers.GetUserProfile)
}
