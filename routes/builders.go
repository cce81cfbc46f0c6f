package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/craftlink/marketplace-api/controllers"
	"github.com/craftlink/marketplace-api/middleware"
)

// SetupBuilderRoutes configures the marketplace discovery surface and
// builder profile management.
func SetupBuilderRoutes(app *fiber.App) {
	builders := app.Group("/api/builders")

	builders.Get("/", controllers.ListBuilders)

	builders.Put("/me",
		middleware.Protected(),
		middleware.Authorize(PolicyTable),
		controllers.UpsertMyProfile)
	builders.Post("/me/avatar",
		middleware.Protected(),
		middleware.Authorize(PolicyTable),
		controllers.UploadAvatar)

	builders.Get("/:id", controllers.GetBuilder)
}
