package model

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID    uuid.UUID
	Role      Role
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

// Can reports whether the caller's role grants p.
func (i Identity) Can(p Permission) bool {
	return i.Role.Can(p)
}

// IsStudent reports whether the caller is a student.
func (i Identity) IsStudent() bool {
	return i.Role == RoleStudent
}
