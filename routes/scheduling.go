package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/craftlink/marketplace-api/controllers"
	"github.com/craftlink/marketplace-api/middleware"
	"github.com/craftlink/marketplace-api/scheduling"
)

// SetupSchedulingRoutes configures availability, session type and
// booking routes under /api/scheduling.
func SetupSchedulingRoutes(app *fiber.App, resolver *scheduling.Resolver) {
	sched := app.Group("/api/scheduling")

	// Public read surface.
	sched.Get("/availability", controllers.GetAvailability(resolver))
	sched.Get("/session-types", controllers.GetAllSessionTypes)
	sched.Get("/session-types/:id", controllers.GetSessionType)

	authorized := []fiber.Handler{middleware.Protected(), middleware.Authorize(PolicyTable)}

	sched.Post("/session-types", append(authorized, controllers.CreateSessionType)...)
	sched.Patch("/session-types/:id", append(authorized, controllers.UpdateSessionType)...)
	sched.Delete("/session-types/:id", append(authorized, controllers.DeleteSessionType)...)

	sched.Get("/rules", append(authorized, controllers.GetRules)...)
	sched.Post("/rules", append(authorized, controllers.CreateRule)...)
	sched.Patch("/rules/:id", append(authorized, controllers.UpdateRule)...)
	sched.Delete("/rules/:id", append(authorized, controllers.DeleteRule)...)

	sched.Get("/exceptions", append(authorized, controllers.GetExceptions)...)
	sched.Post("/exceptions", append(authorized, controllers.CreateException)...)
	sched.Delete("/exceptions/:id", append(authorized, controllers.DeleteException)...)

	sched.Post("/bookings", append(authorized, controllers.CreateBooking(resolver))...)
	sched.Get("/bookings", append(authorized, controllers.ListMyBookings)...)
	sched.Get("/bookings/:id", append(authorized, controllers.GetBooking)...)
	sched.Patch("/bookings/:id/status", append(authorized, controllers.UpdateBookingStatus)...)
}
