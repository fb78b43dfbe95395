package domain

import "strings"

// Role enumerates the access tiers of a user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleEmployee   Role = "employee"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleTechnician, RoleEmployee}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleEmployee:
		return true
	}
	return false
}

// ParseRole normalizes raw input into a Role.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	return r, r.Valid()
}

// Actor is the authenticated caller of a core operation.
type Actor struct {
	ID   int64
	Role Role
}

// IsAdmin reports whether the actor holds the admin role.
func IsAdmin(a Actor) bool {
	return a.Role == RoleAdmin
}

// IsTechnicianTier reports whether the actor may triage any ticket.
// Unknown roles fail closed.
func IsTechnicianTier(a Actor) bool {
	return a.Role == RoleAdmin || a.Role == RoleTechnician
}
