package domain

import (
	"errors"
	"fmt"
)

var ErrValidation = errors.New("validation failed")

// Absent and not-owned records are reported with the same error so callers
// cannot discover other users' records.
var (
	ErrPlantNotFound        = errors.New("plant not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrReminderNotFound     = errors.New("reminder not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

var (
	ErrImageRequired        = NewValidationError("image", "image is required")
	ErrInvalidPlantRef      = NewValidationError("plant_id", "reminder's plant reference invalid")
	ErrInvalidNotifPlantRef = NewValidationError("plant_id", "plant not found or not owned by the recipient")
	ErrTargetUserNotFound   = NewValidationError("target_user_id", "target user not found")
	ErrCommentPlantNotFound = NewValidationError("plant_id", "plant not found")
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlantNotFound) ||
		errors.Is(err, ErrCommentNotFound) ||
		errors.Is(err, ErrReminderNotFound) ||
		errors.Is(err, ErrNotificationNotFound)
}
