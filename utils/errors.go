package utils

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

type ErrorType string

const (
	ErrAuthentication ErrorType = "AUTHENTICATION_ERROR"
	ErrAuthorization  ErrorType = "AUTHORIZATION_ERROR"
	ErrValidation     ErrorType = "VALIDATION_ERROR"
	ErrResource       ErrorType = "RESOURCE_ERROR"
	ErrPayment        ErrorType = "PAYMENT_ERROR"
	ErrInternal       ErrorType = "INTERNAL_ERROR"
)

// ErrorBody is the typed error part of the response envelope.
type ErrorBody struct {
	Type   ErrorType `json:"type"`
	Detail string    `json:"detail,omitempty"`
}

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// HTTPStatus maps an error type to its HTTP status code.
func HTTPStatus(t ErrorType) int {
	switch t {
	case ErrAuthentication:
		return fiber.StatusUnauthorized
	case ErrAuthorization:
		return fiber.StatusForbidden
	case ErrValidation:
		return fiber.StatusBadRequest
	case ErrResource:
		return fiber.StatusNotFound
	case ErrPayment:
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusInternalServerError
	}
}

// Fail writes the error envelope with the status matching the error type.
func Fail(c *fiber.Ctx, t ErrorType, message, detail string) error {
	return c.Status(HTTPStatus(t)).JSON(ErrorResponse{
		Success: false,
		Message: message,
		Error:   &ErrorBody{Type: t, Detail: detail},
	})
}

// FailInternal logs the underlying error with context and returns a
// generic 500 without leaking internals to the caller.
func FailInternal(c *fiber.Ctx, message string, err error) error {
	log.Printf("%s %s: %s: %v", c.Method(), c.Path(), message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Success: false,
		Message: message,
		Error:   &ErrorBody{Type: ErrInternal},
	})
}
