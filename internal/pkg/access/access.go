// Package access holds the ownership policy shared by every service.
package access

import "github.com/google/uuid"

// CanAccess is true when the caller is an administrator or owns the record.
func CanAccess(ownerID, callerID uuid.UUID, isAdmin bool) bool {
	return isAdmin || ownerID == callerID
}
