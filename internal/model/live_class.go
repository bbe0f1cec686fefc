package model

import (
	"time"

	"github.com/google/uuid"
)

// LiveClassStatus enumerates the lifecycle of a live class.
type LiveClassStatus string

const (
	LiveClassStatusScheduled LiveClassStatus = "scheduled"
	LiveClassStatusLive      LiveClassStatus = "live"
	LiveClassStatusFinished  LiveClassStatus = "finished"
	LiveClassStatusCancelled LiveClassStatus = "cancelled"
)

// LiveClass is a scheduled synchronous session for a course.
type LiveClass struct {
	ID               uuid.UUID       `json:"id"`
	CourseID         uuid.UUID       `json:"course_id"`
	Title            string          `json:"title"`
	ScheduledAt      time.Time       `json:"scheduled_at"`
	DurationMinutes  int             `json:"duration_minutes"`
	MeetingLink      string          `json:"meeting_link"`
	MaxParticipants  int             `json:"max_participants"`
	ParticipantCount int             `json:"participant_count"`
	Status           LiveClassStatus `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// CreateLiveClassRequest is the payload for scheduling a live class.
type CreateLiveClassRequest struct {
	CourseID        uuid.UUID `json:"course_id" binding:"required"`
	Title           string    `json:"title" binding:"required,min=3,max=200"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=5,max=600"`
	MeetingLink     string    `json:"meeting_link" binding:"omitempty,url,max=500"`
	MaxParticipants int       `json:"max_participants" binding:"omitempty,min=1,max=10000"`
}

// UpdateLiveClassRequest edits a live class; zero values are left unchanged.
type UpdateLiveClassRequest struct {
	Title           string          `json:"title" binding:"omitempty,min=3,max=200"`
	ScheduledAt     *time.Time      `json:"scheduled_at" binding:"omitempty"`
	DurationMinutes int             `json:"duration_minutes" binding:"omitempty,min=5,max=600"`
	MeetingLink     *string         `json:"meeting_link" binding:"omitempty,max=500"`
	MaxParticipants int             `json:"max_participants" binding:"omitempty,min=1,max=10000"`
	Status          LiveClassStatus `json:"status" binding:"omitempty,oneof=scheduled live finished cancelled"`
}

// LiveClassFilter narrows live class listings.
type LiveClassFilter struct {
	CourseIDs    []uuid.UUID
	UpcomingOnly bool
	Limit        int
	Offset       int
}
