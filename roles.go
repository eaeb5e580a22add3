package auth

import "strings"

// UserRole is the account's global role.
type UserRole string

const (
	// RoleReader can browse the catalog and manage their own library.
	RoleReader UserRole = "reader"
	// RoleWriter can author and edit works in addition to reading.
	RoleWriter UserRole = "writer"
	// RoleAdmin can manage accounts and administrative resources.
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleReader, RoleWriter, RoleAdmin:
		return true
	default:
		return false
	}
}

// SelfAssignable reports whether the role may be requested during
// self-service registration. Admin accounts are only created through an
// explicit elevation path, never through the public register endpoint.
func (r UserRole) SelfAssignable() bool {
	switch r {
	case RoleReader, RoleWriter:
		return true
	default:
		return false
	}
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleReader: 0,
		RoleWriter: 1,
		RoleAdmin:  2,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleReader,
		RoleWriter,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(strings.ToLower(strings.TrimSpace(roleStr)))
	return role, role.IsValid()
}
