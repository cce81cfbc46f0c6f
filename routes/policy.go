package routes

import (
	"github.com/craftlink/marketplace-api/middleware"
	"github.com/craftlink/marketplace-api/models"
)

// PolicyTable is the single place where routes are bound to roles. The
// first matching entry wins; routes without an entry only require a
// valid token. Ownership checks (is this *your* booking) stay in the
// handlers — the table covers role gating only.
var PolicyTable = []middleware.RoutePolicy{
	// Offerings and availability are managed by builders.
	{Method: "POST", PathPrefix: "/api/scheduling/session-types", Roles: []string{models.RoleBuilder, models.RoleAdmin}},
	{Method: "PATCH", PathPrefix: "/api/scheduling/session-types", Roles: []string{models.RoleBuilder, models.RoleAdmin}},
	{Method: "DELETE", PathPrefix: "/api/scheduling/session-types", Roles: []string{models.RoleBuilder, models.RoleAdmin}},
	{Method: "*", PathPrefix: "/api/scheduling/rules", Roles: []string{models.RoleBuilder, models.RoleAdmin}},
	{Method: "*", PathPrefix: "/api/scheduling/exceptions", Roles: []string{models.RoleBuilder, models.RoleAdmin}},

	// Clients open bookings and checkouts; status updates are open to
	// both sides and resolved per booking in the handler.
	{Method: "POST", PathPrefix: "/api/scheduling/bookings", Roles: []string{models.RoleClient, models.RoleAdmin}},
	{Method: "POST", PathPrefix: "/api/stripe/checkout", Roles: []string{models.RoleClient, models.RoleAdmin}},

	// Builder profile management.
	{Method: "PUT", PathPrefix: "/api/builders/me", Roles: []string{models.RoleBuilder, models.RoleAdmin}},
	{Method: "POST", PathPrefix: "/api/builders/me", Roles: []string{models.RoleBuilder, models.RoleAdmin}},

	// Admin tooling.
	{Method: "*", PathPrefix: "/rbac", Roles: []string{models.RoleAdmin}},
}
