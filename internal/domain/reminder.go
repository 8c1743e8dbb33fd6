package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) IsValid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// Key is the translation key of the priority label.
func (p Priority) Key() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityMedium:
		return "MEDIUM"
	case PriorityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

type Reminder struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	ScheduledAt time.Time  `json:"scheduled_at" db:"scheduled_at"`
	Completed   bool       `json:"completed" db:"completed"`
	Priority    Priority   `json:"priority" db:"priority"`
	Category    string     `json:"category" db:"category"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	PlantID     *uuid.UUID `json:"plant_id,omitempty" db:"plant_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at"`

	PlantScientificName *string `json:"plant_scientific_name,omitempty" db:"plant_scientific_name"`
	PlantCommonName     *string `json:"plant_common_name,omitempty" db:"plant_common_name"`

	PriorityLabel string `json:"priority_label" db:"-"`
	Overdue       bool   `json:"overdue" db:"-"`
	DaysRemaining int    `json:"days_remaining" db:"-"`
}

// IsOverdue reports whether the reminder is still open and its scheduled
// time has passed.
func (r *Reminder) IsOverdue(now time.Time) bool {
	return !r.Completed && r.ScheduledAt.Before(now)
}

// DaysUntil is the number of UTC calendar days from now to the scheduled
// date. Negative when the date is in the past.
func (r *Reminder) DaysUntil(now time.Time) int {
	scheduled := StartOfDayUTC(r.ScheduledAt)
	today := StartOfDayUTC(now)
	return int(scheduled.Sub(today).Hours() / 24)
}

func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type ReminderInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
	PlantID     *uuid.UUID `json:"plant_id,omitempty"`
}

type CreateReminderInput struct {
	ReminderInput
}

type UpdateReminderInput struct {
	ReminderInput
	Completed bool `json:"completed"`
}

type CompleteReminderInput struct {
	Completed bool `json:"completed"`
}

func (in *ReminderInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	if in.Priority == 0 {
		in.Priority = PriorityMedium
	}
	if in.PlantID != nil && *in.PlantID == uuid.Nil {
		in.PlantID = nil
	}
}

func (in ReminderInput) Validate() error {
	if in.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(in.Title) > 100 {
		return NewValidationError("title", "title must be at most 100 characters")
	}
	if utf8.RuneCountInString(in.Description) > 500 {
		return NewValidationError("description", "description must be at most 500 characters")
	}
	if utf8.RuneCountInString(in.Category) > 50 {
		return NewValidationError("category", "category must be at most 50 characters")
	}
	if in.ScheduledAt.IsZero() {
		return NewValidationError("scheduled_at", "scheduled date is required")
	}
	if !in.Priority.IsValid() {
		return NewValidationError("priority", "priority must be between 1 (low) and 3 (high)")
	}
	return nil
}

// ReminderFilter narrows a listing of one owner's reminders. Nil fields do
// not filter.
type ReminderFilter struct {
	UserID          uuid.UUID
	Category        *string
	Priority        *Priority
	Completed       *bool
	PlantID         *uuid.UUID
	Search          *string
	ScheduledFrom   *time.Time // inclusive
	ScheduledBefore *time.Time // exclusive
	ScheduledUntil  *time.Time // inclusive
	// RecentlyUpdatedFirst orders by last update (or creation) descending
	// instead of by scheduled time ascending.
	RecentlyUpdatedFirst bool
}

type ReminderStats struct {
	Total               int64   `json:"total"`
	Completed           int64   `json:"completed"`
	Pending             int64   `json:"pending"`
	Overdue             int64   `json:"overdue"`
	DueToday            int64   `json:"due_today"`
	HighPriorityPending int64   `json:"high_priority_pending"`
	CompletionPercent   float64 `json:"completion_percent"`
}
