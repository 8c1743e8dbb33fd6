package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is owned by the identity service; this backend only reads it to
// resolve notification recipients.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type UserRole string

const RoleAdmin UserRole = "admin"
