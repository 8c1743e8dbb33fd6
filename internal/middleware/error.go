package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"scanplant/internal/domain"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	errorCode := "INTERNAL_ERROR"
	field := ""

	var fiberErr *fiber.Error
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message

		switch code {
		case fiber.StatusBadRequest:
			errorCode = "BAD_REQUEST"
		case fiber.StatusUnauthorized:
			errorCode = "UNAUTHORIZED"
		case fiber.StatusForbidden:
			errorCode = "FORBIDDEN"
		case fiber.StatusNotFound:
			errorCode = "NOT_FOUND"
		case fiber.StatusConflict:
			errorCode = "CONFLICT"
		case fiber.StatusRequestEntityTooLarge:
			errorCode = "PAYLOAD_TOO_LARGE"
		case fiber.StatusUnprocessableEntity:
			errorCode = "VALIDATION_ERROR"
		}
	case errors.As(err, &validationErr):
		code = fiber.StatusBadRequest
		errorCode = "VALIDATION_ERROR"
		message = validationErr.Message
		field = validationErr.Field
	case errors.Is(err, domain.ErrValidation):
		code = fiber.StatusBadRequest
		errorCode = "VALIDATION_ERROR"
		message = err.Error()
	case domain.IsNotFound(err):
		code = fiber.StatusNotFound
		errorCode = "NOT_FOUND"
		message = err.Error()
	}

	traceID := uuid.New().String()[:8]
	if code >= fiber.StatusInternalServerError {
		log.Printf("[%s] %s %s: %v", traceID, c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Code:    errorCode,
		Message: message,
		Field:   field,
		TraceID: traceID,
	})
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}
