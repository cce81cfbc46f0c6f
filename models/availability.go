package models

import (
	"time"

	"gorm.io/gorm"
)

type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// AvailabilityRule is a recurring weekly open-hours window for a builder.
type AvailabilityRule struct {
	gorm.Model
	BuilderID   uint      `json:"builder_id" gorm:"index"`
	Builder     User      `json:"builder,omitempty" gorm:"foreignKey:BuilderID"`
	DayOfWeek   DayOfWeek `json:"day_of_week"`
	StartTime   string    `json:"start_time"` // "HH:MM" in 24h, builder-local
	EndTime     string    `json:"end_time"`   // "HH:MM" in 24h, builder-local
	IsAvailable bool      `json:"is_available" gorm:"default:true"`
}

// AvailabilityException is a one-off override (holiday, block) that takes
// precedence over the recurring rules for the overlapping interval.
type AvailabilityException struct {
	gorm.Model
	BuilderID     uint      `json:"builder_id" gorm:"index"`
	Builder       User      `json:"builder,omitempty" gorm:"foreignKey:BuilderID"`
	StartDateTime time.Time `json:"start_date_time"`
	EndDateTime   time.Time `json:"end_date_time"`
	IsAvailable   bool      `json:"is_available"`
	Title         string    `json:"title"`
}
