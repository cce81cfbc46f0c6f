package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionType is a bookable offering with a fixed duration and price.
type SessionType struct {
	gorm.Model
	BuilderID       uint   `json:"builder_id" gorm:"index"`
	Builder         User   `json:"builder,omitempty" gorm:"foreignKey:BuilderID"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int64  `json:"price_cents"` // minor units of Currency
	Currency        string `json:"currency" gorm:"default:usd"`
	IsActive        bool   `json:"is_active" gorm:"default:true"`
	MaxParticipants int    `json:"max_participants" gorm:"default:1"`
}

func (s *SessionType) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
