package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/craftlink/marketplace-api/db"
	"github.com/craftlink/marketplace-api/models"
	"github.com/craftlink/marketplace-api/scheduling"
	"github.com/craftlink/marketplace-api/utils"
)

// GetAvailability resolves open time slots for a builder in a date range.
// Accepts `from`/`to` as RFC3339 or plain dates; `session_type_id` slices
// the open windows into bookable slots of that session's duration.
func GetAvailability(resolver *scheduling.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		builderID := c.QueryInt("builder_id")
		if builderID <= 0 {
			return utils.Fail(c, utils.ErrValidation, "builder_id is required", "")
		}

		from, err := parseQueryTime(c.Query("from"))
		if err != nil {
			return utils.Fail(c, utils.ErrValidation, "Invalid from date", err.Error())
		}
		to, err := parseQueryTime(c.Query("to"))
		if err != nil {
			return utils.Fail(c, utils.ErrValidation, "Invalid to date", err.Error())
		}

		slots, err := resolver.Resolve(uint(builderID), from, to, uint(c.QueryInt("session_type_id")))
		if err != nil {
			switch {
			case errors.Is(err, scheduling.ErrBuilderNotFound):
				return utils.Fail(c, utils.ErrResource, "Builder not found", "")
			case errors.Is(err, scheduling.ErrSessionTypeNotFound):
				return utils.Fail(c, utils.ErrResource, "Session type not found", "")
			case errors.Is(err, scheduling.ErrInvalidRange):
				return utils.Fail(c, utils.ErrValidation, "Invalid date range", "to must not be before from")
			default:
				return utils.FailInternal(c, "Failed to resolve availability", err)
			}
		}

		return c.JSON(fiber.Map{
			"builder_id": builderID,
			"slots":      slots,
			"count":      len(slots),
		})
	}
}

func parseQueryTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// ruleInput is the writable surface of an availability rule. Parsing
// request bodies into it rather than the gorm record keeps callers from
// smuggling in an id or builder_id.
type ruleInput struct {
	DayOfWeek   *models.DayOfWeek `json:"day_of_week"`
	StartTime   string            `json:"start_time"`
	EndTime     string            `json:"end_time"`
	IsAvailable *bool             `json:"is_available"`
}

// CreateRule adds a weekly availability window for the logged-in builder.
func CreateRule(c *fiber.Ctx) error {
	var input ruleInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}
	if err := validateClockRange(input.StartTime, input.EndTime); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Invalid rule window", err.Error())
	}
	if input.DayOfWeek == nil || *input.DayOfWeek < models.Sunday || *input.DayOfWeek > models.Saturday {
		return utils.Fail(c, utils.ErrValidation, "Invalid day of week", "")
	}

	rule := models.AvailabilityRule{
		BuilderID:   c.Locals("userID").(uint),
		DayOfWeek:   *input.DayOfWeek,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		IsAvailable: true,
	}
	if input.IsAvailable != nil {
		rule.IsAvailable = *input.IsAvailable
	}

	if err := db.DB.Create(&rule).Error; err != nil {
		return utils.FailInternal(c, "Failed to create availability rule", err)
	}
	return c.Status(fiber.StatusCreated).JSON(rule)
}

// GetRules lists a builder's weekly rules.
func GetRules(c *fiber.Ctx) error {
	builderID := c.QueryInt("builder_id")
	if builderID <= 0 {
		builderID = int(c.Locals("userID").(uint))
	}

	var rules []models.AvailabilityRule
	if err := db.DB.Where("builder_id = ?", builderID).Order("day_of_week, start_time").Find(&rules).Error; err != nil {
		return utils.FailInternal(c, "Failed to get availability rules", err)
	}
	return c.JSON(rules)
}

// UpdateRule updates a weekly rule owned by the logged-in builder.
func UpdateRule(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Locals("userID").(uint)

	var rule models.AvailabilityRule
	if err := db.DB.First(&rule, id).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "Availability rule not found", "")
	}
	if rule.BuilderID != userID {
		return utils.Fail(c, utils.ErrAuthorization, "You can only update your own availability", "")
	}

	var input ruleInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}
	if input.DayOfWeek != nil {
		if *input.DayOfWeek < models.Sunday || *input.DayOfWeek > models.Saturday {
			return utils.Fail(c, utils.ErrValidation, "Invalid day of week", "")
		}
		rule.DayOfWeek = *input.DayOfWeek
	}
	if input.StartTime != "" {
		rule.StartTime = input.StartTime
	}
	if input.EndTime != "" {
		rule.EndTime = input.EndTime
	}
	if input.IsAvailable != nil {
		rule.IsAvailable = *input.IsAvailable
	}
	if err := validateClockRange(rule.StartTime, rule.EndTime); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Invalid rule window", err.Error())
	}

	if err := db.DB.Save(&rule).Error; err != nil {
		return utils.FailInternal(c, "Failed to update availability rule", err)
	}
	return c.JSON(rule)
}

// DeleteRule removes a weekly rule owned by the logged-in builder.
func DeleteRule(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Locals("userID").(uint)

	var rule models.AvailabilityRule
	if err := db.DB.First(&rule, id).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "Availability rule not found", "")
	}
	if rule.BuilderID != userID {
		return utils.Fail(c, utils.ErrAuthorization, "You can only delete your own availability", "")
	}

	if err := db.DB.Delete(&rule).Error; err != nil {
		return utils.FailInternal(c, "Failed to delete availability rule", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateException adds a one-off override (holiday, block, extra hours).
func CreateException(c *fiber.Ctx) error {
	var input struct {
		StartDateTime time.Time `json:"start_date_time"`
		EndDateTime   time.Time `json:"end_date_time"`
		IsAvailable   bool      `json:"is_available"`
		Title         string    `json:"title"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}
	if !input.EndDateTime.After(input.StartDateTime) {
		return utils.Fail(c, utils.ErrValidation, "Invalid exception window", "end must be after start")
	}

	exception := models.AvailabilityException{
		BuilderID:     c.Locals("userID").(uint),
		StartDateTime: input.StartDateTime,
		EndDateTime:   input.EndDateTime,
		IsAvailable:   input.IsAvailable,
		Title:         input.Title,
	}
	if err := db.DB.Create(&exception).Error; err != nil {
		return utils.FailInternal(c, "Failed to create availability exception", err)
	}
	return c.Status(fiber.StatusCreated).JSON(exception)
}

// GetExceptions lists a builder's one-off overrides.
func GetExceptions(c *fiber.Ctx) error {
	builderID := c.QueryInt("builder_id")
	if builderID <= 0 {
		builderID = int(c.Locals("userID").(uint))
	}

	var exceptions []models.AvailabilityException
	if err := db.DB.Where("builder_id = ?", builderID).Order("start_date_time").Find(&exceptions).Error; err != nil {
		return utils.FailInternal(c, "Failed to get availability exceptions", err)
	}
	return c.JSON(exceptions)
}

// DeleteException removes a one-off override owned by the logged-in builder.
func DeleteException(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Locals("userID").(uint)

	var exception models.AvailabilityException
	if err := db.DB.First(&exception, id).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "Availability exception not found", "")
	}
	if exception.BuilderID != userID {
		return utils.Fail(c, utils.ErrAuthorization, "You can only delete your own availability", "")
	}

	if err := db.DB.Delete(&exception).Error; err != nil {
		return utils.FailInternal(c, "Failed to delete availability exception", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func validateClockRange(start, end string) error {
	s, err := time.Parse("15:04", start)
	if err != nil {
		return errors.New("start time must be HH:MM")
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		return errors.New("end time must be HH:MM")
	}
	if !e.After(s) {
		return errors.New("end time must be after start time")
	}
	return nil
}
