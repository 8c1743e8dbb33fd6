package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const DefaultNotificationType = "info"

type NotificationStatus string

const (
	NotifPending NotificationStatus = "Pending"
	NotifSent    NotificationStatus = "Sent"
	NotifRead    NotificationStatus = "Read"
)

type Notification struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Type      string     `json:"type" db:"type"`
	Title     string     `json:"title" db:"title"`
	Message   string     `json:"message" db:"message"`
	LinkURL   *string    `json:"link_url,omitempty" db:"link_url"`
	PlantID   *uuid.UUID `json:"plant_id,omitempty" db:"plant_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	ReadAt    *time.Time `json:"read_at,omitempty" db:"read_at"`

	PlantScientificName *string `json:"plant_scientific_name,omitempty" db:"plant_scientific_name"`
	PlantCommonName     *string `json:"plant_common_name,omitempty" db:"plant_common_name"`

	Status NotificationStatus `json:"status" db:"-"`
}

// CurrentStatus derives the lifecycle state from the timestamps.
func (n *Notification) CurrentStatus() NotificationStatus {
	switch {
	case n.ReadAt != nil:
		return NotifRead
	case n.SentAt != nil:
		return NotifSent
	default:
		return NotifPending
	}
}

type NotificationInput struct {
	Title   string     `json:"title"`
	Message string     `json:"message"`
	Type    string     `json:"type"`
	LinkURL *string    `json:"link_url,omitempty"`
	PlantID *uuid.UUID `json:"plant_id,omitempty"`
}

type CreateNotificationInput struct {
	NotificationInput
	// TargetUserID is honoured only for admin callers.
	TargetUserID *uuid.UUID `json:"target_user_id,omitempty"`
}

type UpdateNotificationInput struct {
	NotificationInput
}

type MarkReadInput struct {
	Read *bool `json:"read"`
}

func (in *NotificationInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		in.Type = DefaultNotificationType
	}
	if in.LinkURL != nil && strings.TrimSpace(*in.LinkURL) == "" {
		in.LinkURL = nil
	}
	if in.PlantID != nil && *in.PlantID == uuid.Nil {
		in.PlantID = nil
	}
}

func (in NotificationInput) Validate() error {
	if in.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(in.Title) > 120 {
		return NewValidationError("title", "title must be at most 120 characters")
	}
	if strings.TrimSpace(in.Message) == "" {
		return NewValidationError("message", "message is required")
	}
	if utf8.RuneCountInString(in.Message) > 1000 {
		return NewValidationError("message", "message must be at most 1000 characters")
	}
	if utf8.RuneCountInString(in.Type) > 60 {
		return NewValidationError("type", "type must be at most 60 characters")
	}
	if in.LinkURL != nil && utf8.RuneCountInString(*in.LinkURL) > 300 {
		return NewValidationError("link_url", "link must be at most 300 characters")
	}
	return nil
}

type NotificationFilter struct {
	UserID uuid.UUID
	// Unread selects unread (true) or read (false) notifications.
	Unread      *bool
	Type        *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
