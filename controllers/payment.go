package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/craftlink/marketplace-api/db"
	"github.com/craftlink/marketplace-api/models"
	"github.com/craftlink/marketplace-api/payments"
	"github.com/craftlink/marketplace-api/utils"
)

// CreateCheckout opens a hosted checkout session for one of the client's
// own pending bookings and returns the redirect URL.
func CreateCheckout(bridge *payments.Bridge) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input struct {
			BookingID  uint   `json:"booking_id"`
			SuccessURL string `json:"success_url"`
			CancelURL  string `json:"cancel_url"`
		}
		if err := c.BodyParser(&input); err != nil {
			return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
		}
		if input.SuccessURL == "" || input.CancelURL == "" {
			return utils.Fail(c, utils.ErrValidation, "success_url and cancel_url are required", "")
		}

		var booking models.Booking
		if err := db.DB.First(&booking, input.BookingID).Error; err != nil {
			return utils.Fail(c, utils.ErrResource, "Booking not found", "")
		}
		if booking.ClientID != c.Locals("userID").(uint) {
			return utils.Fail(c, utils.ErrAuthorization, "You can only pay for your own bookings", "")
		}
		if booking.IsTerminal() {
			return utils.Fail(c, utils.ErrValidation, "Booking can no longer be paid", "")
		}
		if booking.PaymentStatus == models.PaymentPaid {
			return utils.Fail(c, utils.ErrValidation, "Booking is already paid", "")
		}

		var sessionType models.SessionType
		if err := db.DB.First(&sessionType, booking.SessionTypeID).Error; err != nil {
			return utils.Fail(c, utils.ErrResource, "Session type not found", "")
		}

		sess, err := bridge.CreateCheckoutSession(&booking, &sessionType, input.SuccessURL, input.CancelURL)
		if err != nil {
			return utils.Fail(c, utils.ErrPayment, "Failed to create checkout session", err.Error())
		}

		return c.JSON(fiber.Map{
			"checkout_session_id": sess.ID,
			"url":                 sess.URL,
		})
	}
}

// StripeWebhook receives asynchronous payment outcomes. Signature
// failures are rejected with 400; every verified event is acknowledged
// with 200 even when processing fails, to avoid retry storms from the
// provider.
func StripeWebhook(bridge *payments.Bridge) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event, err := bridge.VerifyEvent(c.Body(), c.Get("Stripe-Signature"))
		if err != nil {
			return utils.Fail(c, utils.ErrValidation, "Invalid webhook signature", "")
		}

		if err := bridge.HandleEvent(c.Context(), event); err != nil {
			log.Printf("webhook %s (%s): processing failed: %v", event.ID, event.Type, err)
		}
		return c.SendStatus(fiber.StatusOK)
	}
}
