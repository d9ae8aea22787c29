package users

import "github.com/google/uuid"

// Actor is the authenticated identity every mutating operation receives.
// Role is checked once at the entry of each operation.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}
