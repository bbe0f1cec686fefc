package service

import (
	"context"
	"strings"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/google/uuid"
)

// SessionRevoker invalidates the tokens already issued to a profile.
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, profileID uuid.UUID) error
}

// UserService handles profile administration.
type UserService struct {
	profiles ProfileStore
	sessions SessionRevoker
}

// NewUserService creates a new UserService.
func NewUserService(profiles ProfileStore, sessions SessionRevoker) *UserService {
	return &UserService{profiles: profiles, sessions: sessions}
}

// List retrieves a page of profiles.
func (s *UserService) List(ctx context.Context, f model.ProfileFilter) ([]model.Profile, *response.Pagination, error) {
	f.Limit, f.Offset = normalizePage(f.Limit, f.Offset)
	f.Search = strings.TrimSpace(f.Search)

	profiles, total, err := s.profiles.List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return profiles, response.NewPagination(f.Limit, f.Offset, total), nil
}

// Update changes a profile's name and/or role. A role change revokes the
// profile's outstanding tokens, which still carry the old role.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req model.UpdateProfileRequest) (*model.Profile, error) {
	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FullName != "" {
		p.FullName = strings.TrimSpace(req.FullName)
	}
	roleChanged := req.Role != "" && req.Role != p.Role
	if req.Role != "" {
		p.Role = req.Role
	}
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	if roleChanged {
		if err := s.sessions.RevokeSessions(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return p, nil
}
