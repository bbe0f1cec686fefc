package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is an authenticated platform user.
type Profile struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TeacherDetail extends a teacher profile.
type TeacherDetail struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Specialty string    `json:"specialty"`
	Bio       string    `json:"bio"`
}

// StudentDetail extends a student profile.
type StudentDetail struct {
	ProfileID   uuid.UUID `json:"profile_id"`
	Institution string    `json:"institution"`
	Grade       string    `json:"grade"`
}

// SignupRequest is the payload for creating a profile.
type SignupRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=6,max=128"`
	FullName    string `json:"full_name" binding:"required,min=2,max=120"`
	Role        Role   `json:"role" binding:"omitempty,oneof=admin teacher student"`
	Institution string `json:"institution" binding:"omitempty,max=120"`
	Grade       string `json:"grade" binding:"omitempty,max=40"`
	Specialty   string `json:"specialty" binding:"omitempty,max=120"`
}

// LoginRequest is the payload for password authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// UpdatePasswordRequest is the privileged password reset payload. One of
// UserID or Email identifies the profile.
type UpdatePasswordRequest struct {
	UserID      *uuid.UUID `json:"user_id" binding:"required_without=Email"`
	Email       string     `json:"email" binding:"omitempty,email"`
	NewPassword string     `json:"new_password" binding:"required,min=6,max=128"`
}

// UpdateProfileRequest is the admin payload for editing a profile.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"omitempty,min=2,max=120"`
	Role     Role   `json:"role" binding:"omitempty,oneof=admin teacher student"`
}

// ProfileFilter narrows profile listings.
type ProfileFilter struct {
	Role   Role
	Search string
	Limit  int
	Offset int
}
