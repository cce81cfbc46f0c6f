package payments

import (
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"gorm.io/gorm"

	"github.com/craftlink/marketplace-api/models"
	appredis "github.com/craftlink/marketplace-api/redis"
)

// Bridge wraps the hosted checkout provider. The Stripe client is
// constructed here and injected into handlers instead of configuring the
// package-global key.
type Bridge struct {
	API           *client.API
	DB            *gorm.DB
	Ledger        *appredis.Ledger
	WebhookSecret string
}

func NewBridge(secretKey, webhookSecret string, db *gorm.DB, ledger *appredis.Ledger) *Bridge {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Bridge{
		API:           api,
		DB:            db,
		Ledger:        ledger,
		WebhookSecret: webhookSecret,
	}
}

// CreateCheckoutSession opens a hosted checkout for the booking, stores
// the session ID on the booking row and moves its payment status to
// pending. Returns the URL the client should be redirected to.
func (b *Bridge) CreateCheckoutSession(booking *models.Booking, sessionType *models.SessionType, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	if booking.PaymentStatus == models.PaymentPaid {
		return nil, fmt.Errorf("booking %d is already paid", booking.ID)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(sessionType.Currency),
					UnitAmount: stripe.Int64(sessionType.PriceCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(sessionType.Title),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		ClientReferenceID: stripe.String(booking.Reference),
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{
				"booking_id": strconv.FormatUint(uint64(booking.ID), 10),
			},
		},
	}
	params.AddMetadata("booking_id", strconv.FormatUint(uint64(booking.ID), 10))

	sess, err := b.API.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}

	booking.CheckoutSessionID = sess.ID
	booking.PaymentStatus = models.PaymentPending
	if err := b.DB.Save(booking).Error; err != nil {
		return nil, err
	}
	return sess, nil
}
