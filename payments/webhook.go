package payments

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"

	"github.com/craftlink/marketplace-api/models"
)

// VerifyEvent checks the provider signature and parses the payload. A
// verification failure must surface as a 400 with the booking untouched.
func (b *Bridge) VerifyEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, b.WebhookSecret)
}

// HandleEvent applies one verified event. The redis ledger guarantees a
// replayed event ID is applied at most once; the no-op transition rules
// in ApplyPaymentOutcome cover the case where the ledger is unavailable.
func (b *Bridge) HandleEvent(ctx context.Context, event stripe.Event) error {
	if b.Ledger != nil {
		first, err := b.Ledger.MarkProcessed(ctx, event.ID)
		if err != nil {
			log.Printf("webhook ledger unavailable, processing %s anyway: %v", event.ID, err)
		} else if !first {
			return nil
		}
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return err
		}
		paymentID := ""
		if sess.PaymentIntent != nil {
			paymentID = sess.PaymentIntent.ID
		}
		return b.applyToSession(event, sess.ID, models.PaymentPaid, paymentID, "")

	case "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return err
		}
		return b.applyToSession(event, sess.ID, models.PaymentFailed, "", "checkout session expired")

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return err
		}
		reason := "payment failed"
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			reason = intent.LastPaymentError.Msg
		}
		return b.applyToIntent(event, &intent, reason)
	}

	// Unsubscribed event types are acknowledged and skipped.
	return nil
}

func (b *Bridge) applyToSession(event stripe.Event, checkoutSessionID string, status models.PaymentStatus, paymentID, reason string) error {
	var booking models.Booking
	err := b.DB.Where("checkout_session_id = ?", checkoutSessionID).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("webhook %s: no booking for checkout session %s", event.ID, checkoutSessionID)
		return nil
	}
	if err != nil {
		return err
	}
	return b.apply(event, &booking, status, paymentID, reason)
}

func (b *Bridge) applyToIntent(event stripe.Event, intent *stripe.PaymentIntent, reason string) error {
	var booking models.Booking
	err := b.DB.Where("payment_id = ?", intent.ID).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Fall back to the booking ID stamped into the intent metadata at
		// checkout time.
		rawID := intent.Metadata["booking_id"]
		id, convErr := strconv.ParseUint(rawID, 10, 64)
		if convErr != nil {
			log.Printf("webhook %s: no booking for payment intent %s", event.ID, intent.ID)
			return nil
		}
		if err := b.DB.First(&booking, uint(id)).Error; err != nil {
			log.Printf("webhook %s: no booking for payment intent %s", event.ID, intent.ID)
			return nil
		}
	} else if err != nil {
		return err
	}
	return b.apply(event, &booking, models.PaymentFailed, intent.ID, reason)
}

func (b *Bridge) apply(event stripe.Event, booking *models.Booking, status models.PaymentStatus, paymentID, reason string) error {
	return b.DB.Transaction(func(tx *gorm.DB) error {
		if err := booking.ApplyPaymentOutcome(tx, status, paymentID, reason); err != nil {
			return err
		}
		audit := models.WebhookEvent{
			EventID:     event.ID,
			Type:        string(event.Type),
			BookingID:   booking.ID,
			ProcessedAt: time.Now().UTC(),
		}
		// A replay that slipped past the ledger hits the unique event_id
		// index here; the state write above was a no-op in that case.
		if err := tx.Create(&audit).Error; err != nil {
			log.Printf("webhook %s: audit row not recorded: %v", event.ID, err)
		}
		return nil
	})
}
