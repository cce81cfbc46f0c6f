package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/craftlink/marketplace-api/db"
	"github.com/craftlink/marketplace-api/models"
	"github.com/craftlink/marketplace-api/utils"
)

// GetAllSessionTypes returns bookable offerings, optionally filtered by
// builder. Inactive ones are hidden unless the builder asks for them.
func GetAllSessionTypes(c *fiber.Ctx) error {
	query := db.DB.Model(&models.SessionType{})

	if builderID := c.QueryInt("builder_id"); builderID > 0 {
		query = query.Where("builder_id = ?", builderID)
	}
	if !c.QueryBool("include_inactive") {
		query = query.Where("is_active = ?", true)
	}

	var sessionTypes []models.SessionType
	if err := query.Find(&sessionTypes).Error; err != nil {
		return utils.FailInternal(c, "Failed to fetch session types", err)
	}
	return c.JSON(sessionTypes)
}

func GetSessionType(c *fiber.Ctx) error {
	id := c.Params("id")
	var sessionType models.SessionType
	if err := db.DB.First(&sessionType, id).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "Session type not found", "")
	}
	return c.JSON(sessionType)
}

// CreateSessionType creates an offering owned by the logged-in builder.
func CreateSessionType(c *fiber.Ctx) error {
	input := new(models.SessionType)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}

	if input.Title == "" || input.DurationMinutes <= 0 || input.PriceCents < 0 {
		return utils.Fail(c, utils.ErrValidation, "Invalid session type",
			"title, a positive duration and a non-negative price are required")
	}

	sessionType := models.SessionType{
		Title:           input.Title,
		Description:     input.Description,
		DurationMinutes: input.DurationMinutes,
		PriceCents:      input.PriceCents,
		Currency:        input.Currency,
		IsActive:        true,
		MaxParticipants: input.MaxParticipants,
		BuilderID:       c.Locals("userID").(uint),
	}
	if sessionType.Currency == "" {
		sessionType.Currency = "usd"
	}
	if sessionType.MaxParticipants <= 0 {
		sessionType.MaxParticipants = 1
	}

	if err := db.DB.Create(&sessionType).Error; err != nil {
		return utils.FailInternal(c, "Failed to create session type", err)
	}
	return c.Status(fiber.StatusCreated).JSON(sessionType)
}

// UpdateSessionType updates an offering; only its owner may do so.
func UpdateSessionType(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)

	var existing models.SessionType
	if err := db.DB.First(&existing, id).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "Session type not found", "")
	}
	if existing.BuilderID != userID && role != models.RoleAdmin {
		return utils.Fail(c, utils.ErrAuthorization, "You can only update your own session types", "")
	}

	input := new(models.SessionType)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.DurationMinutes > 0 {
		updates["duration_minutes"] = input.DurationMinutes
	}
	if input.PriceCents > 0 {
		updates["price_cents"] = input.PriceCents
	}
	if input.Currency != "" {
		updates["currency"] = input.Currency
	}
	updates["is_active"] = input.IsActive

	if err := db.DB.Model(&existing).Updates(updates).Error; err != nil {
		return utils.FailInternal(c, "Failed to update session type", err)
	}
	return c.JSON(existing)
}

// DeleteSessionType soft-deletes an offering; existing bookings keep
// their reference to it.
func DeleteSessionType(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)

	var sessionType models.SessionType
	if err := db.DB.First(&sessionType, id).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "Session type not found", "")
	}
	if sessionType.BuilderID != userID && role != models.RoleAdmin {
		return utils.Fail(c, utils.ErrAuthorization, "You can only delete your own session types", "")
	}

	if err := db.DB.Delete(&sessionType).Error; err != nil {
		return utils.FailInternal(c, "Failed to delete session type", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
