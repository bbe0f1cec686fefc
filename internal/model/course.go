package model

import (
	"time"

	"github.com/google/uuid"
)

// CourseStatus enumerates the lifecycle of a course.
type CourseStatus string

const (
	CourseStatusDraft    CourseStatus = "draft"
	CourseStatusActive   CourseStatus = "active"
	CourseStatusArchived CourseStatus = "archived"
)

// Course is a teacher-owned unit students enroll into.
type Course struct {
	ID            uuid.UUID    `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        CourseStatus `json:"status"`
	Schedule      string       `json:"schedule"`
	Capacity      int          `json:"capacity"`
	TeacherID     uuid.UUID    `json:"teacher_id"`
	EnrolledCount int          `json:"enrolled_count"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// CreateCourseRequest is the payload for creating a course. TeacherID is
// required when an admin creates the course on a teacher's behalf.
type CreateCourseRequest struct {
	Title       string       `json:"title" binding:"required,min=3,max=200"`
	Description string       `json:"description" binding:"omitempty,max=5000"`
	Status      CourseStatus `json:"status" binding:"omitempty,oneof=draft active archived"`
	Schedule    string       `json:"schedule" binding:"omitempty,max=255"`
	Capacity    int          `json:"capacity" binding:"required,min=1,max=10000"`
	TeacherID   *uuid.UUID   `json:"teacher_id" binding:"omitempty"`
}

// UpdateCourseRequest is the payload for editing a course; zero values are left unchanged.
type UpdateCourseRequest struct {
	Title       string       `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string      `json:"description" binding:"omitempty,max=5000"`
	Status      CourseStatus `json:"status" binding:"omitempty,oneof=draft active archived"`
	Schedule    *string      `json:"schedule" binding:"omitempty,max=255"`
	Capacity    int          `json:"capacity" binding:"omitempty,min=1,max=10000"`
}

// CourseFilter narrows course listings. Exactly one of TeacherID or
// StudentID is set by the service for role scoping.
type CourseFilter struct {
	Status    CourseStatus
	TeacherID *uuid.UUID
	StudentID *uuid.UUID
	Search    string
	Limit     int
	Offset    int
}
