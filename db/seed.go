package db

import (
	"github.com/craftlink/marketplace-api/models"
)

// SeedRolesAndPermissions creates the default roles and permissions when
// they do not exist yet. Safe to run on every startup.
func SeedRolesAndPermissions() {
	roles := []models.Role{
		{Name: models.RoleAdmin, Description: "Administrator with full access"},
		{Name: models.RoleBuilder, Description: "Builder offering bookable sessions"},
		{Name: models.RoleClient, Description: "Client who books sessions"},
	}

	for _, role := range roles {
		var existingRole models.Role
		if DB.Where("name = ?", role.Name).First(&existingRole).RowsAffected == 0 {
			DB.Create(&role)
		}
	}

	permissions := []models.Permission{
		{Name: "create_booking", Description: "Create bookings", Resource: "bookings", Action: "create"},
		{Name: "read_bookings", Description: "View bookings", Resource: "bookings", Action: "read"},
		{Name: "update_booking", Description: "Update booking status", Resource: "bookings", Action: "update"},

		{Name: "create_session_type", Description: "Create session types", Resource: "session-types", Action: "create"},
		{Name: "read_session_types", Description: "View session types", Resource: "session-types", Action: "read"},
		{Name: "update_session_type", Description: "Update session types", Resource: "session-types", Action: "update"},
		{Name: "delete_session_type", Description: "Delete session types", Resource: "session-types", Action: "delete"},

		{Name: "create_availability", Description: "Create availability rules", Resource: "availability", Action: "create"},
		{Name: "read_availability", Description: "View availability", Resource: "availability", Action: "read"},
		{Name: "update_availability", Description: "Update availability rules", Resource: "availability", Action: "update"},
		{Name: "delete_availability", Description: "Delete availability rules", Resource: "availability", Action: "delete"},

		{Name: "create_role", Description: "Create roles", Resource: "roles", Action: "create"},
		{Name: "read_roles", Description: "View roles", Resource: "roles", Action: "read"},
		{Name: "create_permission", Description: "Create permissions", Resource: "permissions", Action: "create"},
		{Name: "read_permissions", Description: "View permissions", Resource: "permissions", Action: "read"},
	}

	for _, permission := range permissions {
		var existingPermission models.Permission
		if DB.Where("name = ?", permission.Name).First(&existingPermission).RowsAffected == 0 {
			DB.Create(&permission)
		}
	}

	// Admin gets everything.
	var adminRole models.Role
	if DB.Where("name = ?", models.RoleAdmin).First(&adminRole).RowsAffected > 0 {
		var allPermissions []models.Permission
		DB.Find(&allPermissions)

		DB.Model(&adminRole).Association("Permissions").Clear()
		DB.Model(&adminRole).Association("Permissions").Append(allPermissions)
	}

	// Builders manage their offerings, availability and bookings.
	var builderRole models.Role
	if DB.Where("name = ?", models.RoleBuilder).First(&builderRole).RowsAffected > 0 {
		var builderPermissions []models.Permission
		DB.Where("resource IN (?)", []string{"session-types", "availability", "bookings"}).
			Where("action IN (?)", []string{"create", "read", "update", "delete"}).
			Find(&builderPermissions)

		DB.Model(&builderRole).Association("Permissions").Clear()
		DB.Model(&builderRole).Association("Permissions").Append(builderPermissions)
	}

	// Clients create and read bookings, browse offerings.
	var clientRole models.Role
	if DB.Where("name = ?", models.RoleClient).First(&clientRole).RowsAffected > 0 {
		var clientPermissions []models.Permission
		DB.Where("name IN (?)", []string{
			"create_booking",
			"read_bookings",
			"update_booking",
			"read_session_types",
			"read_availability",
		}).Find(&clientPermissions)

		DB.Model(&clientRole).Association("Permissions").Clear()
		DB.Model(&clientRole).Association("Permissions").Append(clientPermissions)
	}
}
