package model

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus enumerates the lifecycle of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Enrollment links a student to a course.
type Enrollment struct {
	ID          uuid.UUID        `json:"id"`
	CourseID    uuid.UUID        `json:"course_id"`
	StudentID   uuid.UUID        `json:"student_id"`
	StudentName string           `json:"student_name,omitempty"`
	Status      EnrollmentStatus `json:"status"`
	Progress    int              `json:"progress"`
	EnrolledAt  time.Time        `json:"enrolled_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateEnrollmentRequest enrolls a student. Students omit StudentID to enroll themselves.
type CreateEnrollmentRequest struct {
	StudentID *uuid.UUID `json:"student_id" binding:"omitempty"`
}

// UpdateEnrollmentRequest changes status and/or progress.
type UpdateEnrollmentRequest struct {
	Status   EnrollmentStatus `json:"status" binding:"omitempty,oneof=active completed dropped"`
	Progress *int             `json:"progress" binding:"omitempty,min=0,max=100"`
}
