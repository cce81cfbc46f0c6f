package models

import (
	"time"

	"gorm.io/gorm"
)

// WebhookEvent is an audit row for every processed payment webhook event.
// Deduplication itself happens against the redis ledger; this table exists
// so support can answer "did we see event evt_x and what did it touch".
type WebhookEvent struct {
	gorm.Model
	EventID     string    `json:"event_id" gorm:"uniqueIndex"`
	Type        string    `json:"type"`
	BookingID   uint      `json:"booking_id" gorm:"index"`
	ProcessedAt time.Time `json:"processed_at"`
}
