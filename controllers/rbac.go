package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/craftlink/marketplace-api/db"
	"github.com/craftlink/marketplace-api/models"
	"github.com/craftlink/marketplace-api/utils"
)

// CreateRole creates a new role
func CreateRole(c *fiber.Ctx) error {
	role := new(models.Role)

	if err := c.BodyParser(role); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}
	if role.Name == "" {
		return utils.Fail(c, utils.ErrValidation, "Role name is required", "")
	}

	var existingRole models.Role
	if db.DB.Where("name = ?", role.Name).First(&existingRole).RowsAffected > 0 {
		return utils.Fail(c, utils.ErrValidation, "Role with this name already exists", "")
	}

	if err := db.DB.Create(&role).Error; err != nil {
		return utils.FailInternal(c, "Failed to create role", err)
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

// GetRoles returns all roles
func GetRoles(c *fiber.Ctx) error {
	var roles []models.Role
	if err := db.DB.Find(&roles).Error; err != nil {
		return utils.FailInternal(c, "Failed to get roles", err)
	}
	return c.JSON(roles)
}

// CreatePermission creates a new permission
func CreatePermission(c *fiber.Ctx) error {
	permission := new(models.Permission)

	if err := c.BodyParser(permission); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}
	if permission.Name == "" || permission.Resource == "" || permission.Action == "" {
		return utils.Fail(c, utils.ErrValidation, "Name, resource, and action are required", "")
	}

	var existingPermission models.Permission
	if db.DB.Where("name = ?", permission.Name).First(&existingPermission).RowsAffected > 0 {
		return utils.Fail(c, utils.ErrValidation, "Permission with this name already exists", "")
	}

	if err := db.DB.Create(&permission).Error; err != nil {
		return utils.FailInternal(c, "Failed to create permission", err)
	}
	return c.Status(fiber.StatusCreated).JSON(permission)
}

// GetPermissions returns all permissions
func GetPermissions(c *fiber.Ctx) error {
	var permissions []models.Permission
	if err := db.DB.Find(&permissions).Error; err != nil {
		return utils.FailInternal(c, "Failed to get permissions", err)
	}
	return c.JSON(permissions)
}

// AssignRoleToUser assigns a role to a user. This is how a client account
// becomes a builder.
func AssignRoleToUser(c *fiber.Ctx) error {
	type AssignRoleInput struct {
		UserID uint `json:"user_id"`
		RoleID uint `json:"role_id"`
	}

	input := new(AssignRoleInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}

	var user models.User
	if db.DB.First(&user, input.UserID).RowsAffected == 0 {
		return utils.Fail(c, utils.ErrResource, "User not found", "")
	}

	var role models.Role
	if db.DB.First(&role, input.RoleID).RowsAffected == 0 {
		return utils.Fail(c, utils.ErrResource, "Role not found", "")
	}

	user.RoleID = input.RoleID
	if err := db.DB.Save(&user).Error; err != nil {
		return utils.FailInternal(c, "Failed to assign role to user", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Role assigned successfully",
	})
}

// AssignPermissionToRole assigns a permission to a role
func AssignPermissionToRole(c *fiber.Ctx) error {
	type AssignPermissionInput struct {
		RoleID       uint `json:"role_id"`
		PermissionID uint `json:"permission_id"`
	}

	input := new(AssignPermissionInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}

	var role models.Role
	if err := db.DB.Preload("Permissions").First(&role, input.RoleID).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "Role not found", "")
	}

	var permission models.Permission
	if err := db.DB.First(&permission, input.PermissionID).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "Permission not found", "")
	}

	for _, p := range role.Permissions {
		if p.ID == permission.ID {
			return utils.Fail(c, utils.ErrValidation, "Permission already assigned to role", "")
		}
	}

	if err := db.DB.Model(&role).Association("Permissions").Append(&permission); err != nil {
		return utils.FailInternal(c, "Failed to assign permission to role", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Permission assigned successfully",
	})
}
