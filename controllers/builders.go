package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/craftlink/marketplace-api/db"
	"github.com/craftlink/marketplace-api/models"
	"github.com/craftlink/marketplace-api/utils"
)

// ListBuilders is the public marketplace feed of published builder
// profiles, with optional city and text filters.
func ListBuilders(c *fiber.Ctx) error {
	query := db.DB.Model(&models.BuilderProfile{}).Where("is_published = ?", true)

	if city := c.Query("city"); city != "" {
		query = query.Where("city ILIKE ?", city)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("display_name ILIKE ? OR headline ILIKE ?", like, like)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 {
		limit = 20
	}

	var total int64
	query.Count(&total)

	var profiles []models.BuilderProfile
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&profiles).Error; err != nil {
		return utils.FailInternal(c, "Failed to fetch builders", err)
	}

	return c.JSON(fiber.Map{
		"builders": profiles,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

// GetBuilder returns one published profile with its active offerings.
func GetBuilder(c *fiber.Ctx) error {
	id := c.Params("id")

	var profile models.BuilderProfile
	if err := db.DB.Where("builder_id = ? AND is_published = ?", id, true).First(&profile).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "Builder not found", "")
	}

	var sessionTypes []models.SessionType
	if err := db.DB.Where("builder_id = ? AND is_active = ?", profile.BuilderID, true).Find(&sessionTypes).Error; err != nil {
		return utils.FailInternal(c, "Failed to fetch session types", err)
	}

	return c.JSON(fiber.Map{
		"profile":       profile,
		"session_types": sessionTypes,
	})
}

// UpsertMyProfile creates or updates the logged-in builder's profile.
func UpsertMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	input := new(models.BuilderProfile)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}
	if input.Timezone != "" {
		probe := models.BuilderProfile{Timezone: input.Timezone}
		if probe.Location().String() != input.Timezone && input.Timezone != "UTC" {
			return utils.Fail(c, utils.ErrValidation, "Invalid timezone", "must be an IANA name like Europe/Berlin")
		}
	}

	var profile models.BuilderProfile
	if db.DB.Where("builder_id = ?", userID).First(&profile).RowsAffected == 0 {
		profile = models.BuilderProfile{BuilderID: userID}
	}

	profile.DisplayName = input.DisplayName
	profile.Headline = input.Headline
	profile.Bio = input.Bio
	profile.City = input.City
	profile.Country = input.Country
	profile.IsPublished = input.IsPublished
	if input.Timezone != "" {
		profile.Timezone = input.Timezone
	}

	if err := db.DB.Save(&profile).Error; err != nil {
		return utils.FailInternal(c, "Failed to save profile", err)
	}
	return c.JSON(profile)
}

// UploadAvatar attaches a profile image to the builder's marketplace card.
func UploadAvatar(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return utils.Fail(c, utils.ErrValidation, "avatar file is required", err.Error())
	}
	file, err := fileHeader.Open()
	if err != nil {
		return utils.FailInternal(c, "Failed to read upload", err)
	}
	defer file.Close()

	url, err := utils.UploadAvatar(file, fmt.Sprintf("builder-%d", userID))
	if err != nil {
		return utils.FailInternal(c, "Failed to upload avatar", err)
	}

	var profile models.BuilderProfile
	if db.DB.Where("builder_id = ?", userID).First(&profile).RowsAffected == 0 {
		profile = models.BuilderProfile{BuilderID: userID}
	}
	profile.AvatarURL = url
	if err := db.DB.Save(&profile).Error; err != nil {
		return utils.FailInternal(c, "Failed to save profile", err)
	}

	return c.JSON(fiber.Map{
		"avatar_url": url,
	})
}
