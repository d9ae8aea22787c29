package users

// Role is the capability level of an account. Every mutating booking
// operation is gated on it exactly once at the operation entry point.
type Role string

const (
	RolePlayer  Role = "player"
	RoleManager Role = "manager"
)

func IsValidRole(role string) bool {
	switch Role(role) {
	case RolePlayer, RoleManager:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
