package auth

import (
	"github.com/google/uuid"

	"notedeck/internal/model"
)

// Principal is the authenticated identity bound to a request. The zero
// value is anonymous.
type Principal struct {
	UserID uuid.UUID
	Roles  model.RoleList
}

// Anonymous reports whether no identity is bound.
func (p Principal) Anonymous() bool {
	return p.UserID == uuid.Nil
}

// HasRole reports whether the principal holds the given role.
func (p Principal) HasRole(role string) bool {
	return !p.Anonymous() && p.Roles.Has(role)
}

// IsAdmin is shorthand for HasRole(model.RoleAdmin).
func (p Principal) IsAdmin() bool {
	return p.HasRole(model.RoleAdmin)
}
