package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/craftlink/marketplace-api/db"
	"github.com/craftlink/marketplace-api/models"
	"github.com/craftlink/marketplace-api/scheduling"
	"github.com/craftlink/marketplace-api/utils"
)

// CreateBooking books a slot for the logged-in client. The requested
// interval is re-checked against the resolver just before the insert;
// the check reads outside the transaction, so the partial unique index
// on live (builder_id, start_time) rows is what actually closes the
// race between concurrent bookings.
func CreateBooking(resolver *scheduling.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input struct {
			SessionTypeID  uint      `json:"session_type_id"`
			StartTime      time.Time `json:"start_time"`
			ClientTimezone string    `json:"client_timezone"`
			Notes          string    `json:"notes"`
		}
		if err := c.BodyParser(&input); err != nil {
			return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
		}

		var sessionType models.SessionType
		if err := db.DB.First(&sessionType, input.SessionTypeID).Error; err != nil {
			return utils.Fail(c, utils.ErrResource, "Session type not found", "")
		}
		if !sessionType.IsActive {
			return utils.Fail(c, utils.ErrValidation, "Session type is not active", "")
		}
		if input.StartTime.Before(time.Now()) {
			return utils.Fail(c, utils.ErrValidation, "Cannot book a slot in the past", "")
		}

		var builderProfile models.BuilderProfile
		db.DB.Where("builder_id = ?", sessionType.BuilderID).First(&builderProfile)

		booking := models.Booking{
			Reference:       utils.GenerateBookingReference(),
			SessionTypeID:   sessionType.ID,
			BuilderID:       sessionType.BuilderID,
			ClientID:        c.Locals("userID").(uint),
			StartTime:       input.StartTime,
			EndTime:         input.StartTime.Add(sessionType.Duration()),
			Status:          models.StatusPending,
			PaymentStatus:   models.PaymentUnpaid,
			ClientTimezone:  input.ClientTimezone,
			BuilderTimezone: builderProfile.Timezone,
			Notes:           input.Notes,
		}
		if booking.ClientTimezone == "" {
			booking.ClientTimezone = "UTC"
		}
		if booking.BuilderTimezone == "" {
			booking.BuilderTimezone = "UTC"
		}

		err := db.DB.Transaction(func(tx *gorm.DB) error {
			free, err := resolver.IsSlotFree(booking.BuilderID, booking.StartTime, booking.EndTime)
			if err != nil {
				return err
			}
			if !free {
				return fmt.Errorf("time slot not available")
			}
			return tx.Create(&booking).Error
		})
		if err != nil {
			return utils.Fail(c, utils.ErrValidation, "Time slot not available", err.Error())
		}

		sendBookingEmails(&booking, &sessionType)

		return c.Status(fiber.StatusCreated).JSON(booking)
	}
}

// GetBooking returns a booking to one of its participants.
func GetBooking(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)

	var booking models.Booking
	if err := db.DB.Preload("SessionType").Preload("Builder").Preload("Client").First(&booking, id).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "Booking not found", "")
	}

	if booking.ClientID != userID && booking.BuilderID != userID && role != models.RoleAdmin {
		return utils.Fail(c, utils.ErrAuthorization, "You can only view your own bookings", "")
	}

	booking.Builder.Password = ""
	booking.Client.Password = ""
	return c.JSON(booking)
}

// ListMyBookings returns the caller's bookings, on whichever side of the
// marketplace they are, with status and date filters plus pagination.
func ListMyBookings(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)

	query := db.DB.Model(&models.Booking{}).Preload("SessionType")
	if role == models.RoleBuilder {
		query = query.Where("builder_id = ?", userID).Preload("Client")
	} else {
		query = query.Where("client_id = ?", userID).Preload("Builder")
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if c.QueryBool("upcoming") {
		query = query.Where("start_time >= ?", time.Now()).
			Where("status IN ?", []models.BookingStatus{models.StatusPending, models.StatusConfirmed})
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 10
	}

	var total int64
	query.Count(&total)

	var bookings []models.Booking
	if err := query.
		Order("start_time asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&bookings).Error; err != nil {
		return utils.FailInternal(c, "Failed to fetch bookings", err)
	}

	for i := range bookings {
		bookings[i].Builder.Password = ""
		bookings[i].Client.Password = ""
	}

	return c.JSON(fiber.Map{
		"bookings": bookings,
		"total":    total,
		"page":     page,
		"limit":    limit,
		"pages":    (total + int64(limit) - 1) / int64(limit),
	})
}

// UpdateBookingStatus applies a caller-initiated transition. Clients may
// only cancel their own bookings; builders confirm, cancel or complete
// theirs. The state machine itself lives on the model.
func UpdateBookingStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)

	var input struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}

	newStatus := models.BookingStatus(input.Status)
	if newStatus != models.StatusConfirmed && newStatus != models.StatusCancelled && newStatus != models.StatusCompleted {
		return utils.Fail(c, utils.ErrValidation, "Invalid status",
			"must be 'confirmed', 'cancelled', or 'completed'")
	}

	var booking models.Booking
	if err := db.DB.First(&booking, id).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "Booking not found", "")
	}

	// The actor's effective role is their relationship to this booking,
	// not just the JWT role: a builder acting on someone else's booking
	// has no standing at all.
	actorRole := role
	switch {
	case role == models.RoleAdmin:
	case booking.ClientID == userID:
		actorRole = models.RoleClient
	case booking.BuilderID == userID && role == models.RoleBuilder:
		actorRole = models.RoleBuilder
	default:
		return utils.Fail(c, utils.ErrAuthorization, "You can only update your own bookings", "")
	}

	if err := booking.UpdateStatus(db.DB, newStatus, actorRole); err != nil {
		if errors.Is(err, models.ErrNotAllowed) {
			return utils.Fail(c, utils.ErrAuthorization, "You are not allowed to perform this transition", "")
		}
		return utils.Fail(c, utils.ErrValidation, "Invalid status transition", err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Booking status updated successfully",
		"booking": booking,
	})
}

// sendBookingEmails notifies both sides about a new booking. Failures are
// logged, not surfaced; the booking already exists.
func sendBookingEmails(booking *models.Booking, sessionType *models.SessionType) {
	var client, builder models.User
	if err := db.DB.First(&client, booking.ClientID).Error; err != nil {
		return
	}
	if err := db.DB.First(&builder, booking.BuilderID).Error; err != nil {
		return
	}

	clientBody := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your booking has been created and is awaiting payment and confirmation.</p>
		<ul>
			<li><strong>Session:</strong> %s</li>
			<li><strong>Builder:</strong> %s</li>
			<li><strong>Start Time:</strong> %s</li>
			<li><strong>End Time:</strong> %s</li>
			<li><strong>Reference:</strong> %s</li>
		</ul>
		<p>Best regards,</p>
		<p>The CraftLink Team</p>
	`, client.Name, sessionType.Title, builder.Name,
		booking.StartTime.Format("2006-01-02 15:04:05"),
		booking.EndTime.Format("2006-01-02 15:04:05"),
		booking.Reference)
	if err := utils.SendEmail(client.Email, "Booking Created", clientBody); err != nil {
		fmt.Println("Failed to send booking email to client:", err)
	}

	builderBody := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have a new booking request.</p>
		<ul>
			<li><strong>Session:</strong> %s</li>
			<li><strong>Client:</strong> %s</li>
			<li><strong>Start Time:</strong> %s</li>
			<li><strong>End Time:</strong> %s</li>
		</ul>
		<p>Best regards,</p>
		<p>The CraftLink Team</p>
	`, builder.Name, sessionType.Title, client.Name,
		booking.StartTime.Format("2006-01-02 15:04:05"),
		booking.EndTime.Format("2006-01-02 15:04:05"))
	if err := utils.SendEmail(builder.Email, "New Booking Request", builderBody); err != nil {
		fmt.Println("Failed to send booking email to builder:", err)
	}
}
