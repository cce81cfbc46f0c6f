package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentUnpaid            PaymentStatus = "unpaid"
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

var (
	ErrInvalidTransition = fmt.Errorf("invalid status transition")
	ErrNotAllowed        = fmt.Errorf("caller is not allowed to perform this transition")
)

type Booking struct {
	gorm.Model
	Reference         string        `json:"reference" gorm:"uniqueIndex"`
	SessionTypeID     uint          `json:"session_type_id"`
	SessionType       SessionType   `json:"session_type,omitempty" gorm:"foreignKey:SessionTypeID"`
	BuilderID         uint          `json:"builder_id" gorm:"index"`
	Builder           User          `json:"builder,omitempty" gorm:"foreignKey:BuilderID"`
	ClientID          uint          `json:"client_id" gorm:"index"`
	Client            User          `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	StartTime         time.Time     `json:"start_time" gorm:"index"`
	EndTime           time.Time     `json:"end_time"`
	Status            BookingStatus `json:"status"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	PaymentID         string        `json:"payment_id,omitempty"`
	CheckoutSessionID string        `json:"checkout_session_id,omitempty" gorm:"index"`
	FailureReason     string        `json:"failure_reason,omitempty"`
	ClientTimezone    string        `json:"client_timezone"`
	BuilderTimezone   string        `json:"builder_timezone"`
	Notes             string        `json:"notes,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = StatusPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = PaymentUnpaid
	}
	if !b.EndTime.After(b.StartTime) {
		return fmt.Errorf("end time must be after start time")
	}
	return nil
}

// IsTerminal reports whether no further status transitions are allowed.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusCompleted
}

// UpdateStatus applies a caller-initiated transition and persists it.
// Clients may only cancel; builders (and admins) may confirm a pending
// booking, cancel any non-terminal one, and complete a confirmed one.
func (b *Booking) UpdateStatus(tx *gorm.DB, newStatus BookingStatus, actorRole string) error {
	switch actorRole {
	case RoleClient:
		if newStatus != StatusCancelled {
			return ErrNotAllowed
		}
	case RoleBuilder, RoleAdmin:
		// validated against the state machine below
	default:
		return ErrNotAllowed
	}

	switch b.Status {
	case StatusPending:
		if newStatus != StatusConfirmed && newStatus != StatusCancelled {
			return fmt.Errorf("%w: pending to %s", ErrInvalidTransition, newStatus)
		}
	case StatusConfirmed:
		if newStatus != StatusCompleted && newStatus != StatusCancelled {
			return fmt.Errorf("%w: confirmed to %s", ErrInvalidTransition, newStatus)
		}
		if newStatus == StatusCompleted && actorRole == RoleClient {
			return ErrNotAllowed
		}
	case StatusCompleted, StatusCancelled:
		return fmt.Errorf("%w: no transitions allowed from %s", ErrInvalidTransition, b.Status)
	}

	b.Status = newStatus
	return tx.Save(b).Error
}

// ApplyPaymentOutcome is invoked only by the payment webhook handler. On
// "paid" it also advances a still-pending booking to confirmed. Setting a
// status the booking already has is a no-op, so replays are harmless.
func (b *Booking) ApplyPaymentOutcome(tx *gorm.DB, newStatus PaymentStatus, paymentID, failureReason string) error {
	if b.PaymentStatus == newStatus {
		return nil
	}
	// Terminal payment states are never downgraded by late events.
	if b.PaymentStatus == PaymentRefunded || b.PaymentStatus == PaymentPartiallyRefunded {
		return nil
	}
	if b.PaymentStatus == PaymentPaid && (newStatus == PaymentFailed || newStatus == PaymentPending) {
		return nil
	}

	b.PaymentStatus = newStatus
	if paymentID != "" {
		b.PaymentID = paymentID
	}
	if failureReason != "" {
		b.FailureReason = failureReason
	}
	if newStatus == PaymentPaid && b.Status == StatusPending {
		b.Status = StatusConfirmed
	}
	return tx.Save(b).Error
}
