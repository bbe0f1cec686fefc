package model

import (
	"time"

	"github.com/google/uuid"
)

// Group is a named cohort of students.
type Group struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CourseID    *uuid.UUID  `json:"course_id,omitempty"`
	CreatedBy   uuid.UUID   `json:"created_by"`
	MemberIDs   []uuid.UUID `json:"member_ids"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CreateGroupRequest is the payload for creating a group.
type CreateGroupRequest struct {
	Name        string     `json:"name" binding:"required,min=2,max=120"`
	Description string     `json:"description" binding:"omitempty,max=1000"`
	CourseID    *uuid.UUID `json:"course_id" binding:"omitempty"`
}

// AddGroupMemberRequest adds a student to a group.
type AddGroupMemberRequest struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
}
