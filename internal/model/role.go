package model

import "slices"

// Role is the coarse identity class of a profile.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Can reports whether the role grants permission p.
func (r Role) Can(p Permission) bool {
	return slices.Contains(RolePermissions[r], p)
}

// Permissions returns the permission codes of the role as strings.
func (r Role) Permissions() []string {
	perms := RolePermissions[r]
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, string(p))
	}
	return out
}
