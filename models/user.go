package models

import (
	"time"
)

type User struct {
	ID             uint               `json:"id" gorm:"primaryKey"`
	Name           string             `json:"name"`
	Email          string             `json:"email" gorm:"unique"`
	Password       string             `json:"password,omitempty"`
	IsVerified     bool               `json:"is_verified"`
	OTP            string             `json:"otp,omitempty"`
	OTPExpiresAt   time.Time          `json:"otp_expires_at,omitempty"`
	RoleID         uint               `json:"role_id"`
	Role           Role               `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	Profile        *BuilderProfile    `json:"profile,omitempty" gorm:"foreignKey:BuilderID"`
	SessionTypes   []SessionType      `json:"session_types,omitempty" gorm:"foreignKey:BuilderID"`
	Bookings       []Booking          `json:"bookings,omitempty" gorm:"foreignKey:BuilderID"`
	ClientBookings []Booking          `json:"client_bookings,omitempty" gorm:"foreignKey:ClientID"`
	Rules          []AvailabilityRule `json:"rules,omitempty" gorm:"foreignKey:BuilderID"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
