package service

import (
	"context"
	"errors"
	"strings"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/google/uuid"
)

// MessageService handles direct messages between profiles.
type MessageService struct {
	messages MessageStore
	profiles ProfileStore
}

// NewMessageService creates a new MessageService.
func NewMessageService(messages MessageStore, profiles ProfileStore) *MessageService {
	return &MessageService{messages: messages, profiles: profiles}
}

// List returns the caller's sent and received messages, newest first.
func (s *MessageService) List(ctx context.Context, actor model.Identity, limit, offset int) ([]model.Message, *response.Pagination, error) {
	limit, offset = normalizePage(limit, offset)
	list, total, err := s.messages.ListFor(ctx, actor.UserID, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	return list, response.NewPagination(limit, offset, total), nil
}

// Send delivers a message from the caller.
func (s *MessageService) Send(ctx context.Context, actor model.Identity, req model.SendMessageRequest) (*model.Message, error) {
	if _, err := s.profiles.GetByID(ctx, req.RecipientID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("recipient_id", "no existe")
		}
		return nil, err
	}
	m := &model.Message{
		SenderID:    actor.UserID,
		RecipientID: req.RecipientID,
		Subject:     strings.TrimSpace(req.Subject),
		Body:        req.Body,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// MarkRead marks a received message as read.
func (s *MessageService) MarkRead(ctx context.Context, actor model.Identity, id uuid.UUID) error {
	return s.messages.MarkRead(ctx, id, actor.UserID)
}

// UnreadCount returns how many received messages are unread.
func (s *MessageService) UnreadCount(ctx context.Context, actor model.Identity) (int, error) {
	return s.messages.CountUnread(ctx, actor.UserID)
}
