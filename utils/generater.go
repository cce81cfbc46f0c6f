package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

func GenerateOTP() string {
	// Generate a 4-digit OTP
	var number [1]byte
	rand.Read(number[:])
	return fmt.Sprintf("%04d", int(number[0])%10000)
}

// GenerateBookingReference returns a short human-shareable booking code.
func GenerateBookingReference() string {
	return "bk_" + uuid.NewString()
}
