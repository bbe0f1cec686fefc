package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two profiles.
type Message struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SendMessageRequest is the payload for sending a message.
type SendMessageRequest struct {
	RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
	Subject     string    `json:"subject" binding:"required,min=1,max=200"`
	Body        string    `json:"body" binding:"required,min=1,max=10000"`
}
