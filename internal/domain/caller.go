package domain

import (
	"strings"

	"github.com/google/uuid"

	"scanplant/internal/pkg/access"
)

// Caller is the identity an authenticated request acts as.
type Caller struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func NewCaller(userID uuid.UUID, role string) Caller {
	return Caller{UserID: userID, IsAdmin: strings.EqualFold(role, string(RoleAdmin))}
}

// CanAccess reports whether the caller may act on a record owned by ownerID.
func (c Caller) CanAccess(ownerID uuid.UUID) bool {
	return access.CanAccess(ownerID, c.UserID, c.IsAdmin)
}
