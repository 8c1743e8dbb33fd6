package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxCommentLength = 500

type Comment struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	PlantID   uuid.UUID  `json:"plant_id" db:"plant_id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Text      string     `json:"text" db:"text"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`

	PlantScientificName string       `json:"plant_scientific_name" db:"plant_scientific_name"`
	User                *CommentUser `json:"user,omitempty" db:"-"`
}

type CommentUser struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
}

type CreateCommentInput struct {
	Text string `json:"text"`
}

type UpdateCommentInput struct {
	Text string `json:"text"`
}

func validateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return NewValidationError("text", "comment text is required")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return NewValidationError("text", "comment text must be at most 500 characters")
	}
	return nil
}

func (in CreateCommentInput) Validate() error {
	return validateCommentText(in.Text)
}

func (in UpdateCommentInput) Validate() error {
	return validateCommentText(in.Text)
}
