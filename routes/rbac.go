package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/craftlink/marketplace-api/controllers"
	"github.com/craftlink/marketplace-api/middleware"
)

// SetupRBACRoutes configures all RBAC related routes
func SetupRBACRoutes(app *fiber.App) {
	rbac := app.Group("/rbac", middleware.Protected(), middleware.Authorize(PolicyTable))

	rbac.Post("/roles", controllers.CreateRole)
	rbac.Get("/roles", controllers.GetRoles)

	rbac.Post("/permissions", controllers.CreatePermission)
	rbac.Get("/permissions", controllers.GetPermissions)

	rbac.Post("/users/role", controllers.AssignRoleToUser)
	rbac.Post("/roles/permission", controllers.AssignPermissionToRole)
}
