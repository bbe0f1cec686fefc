package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/cache"
	"github.com/epsilon-academy/academy-backend/internal/config"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID  `json:"user_id"`
	Role   model.Role `json:"role"`
	Email  string     `json:"email"`
	// IssuedAtNano is the issue time in nanoseconds. Session cutoffs are
	// compared against it since iat only holds whole seconds.
	IssuedAtNano int64 `json:"iat_ns"`
}

// Identity converts validated claims into the request identity.
func (c *Claims) Identity() model.Identity {
	id := model.Identity{UserID: c.UserID, Role: c.Role, Email: c.Email, TokenID: c.ID}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// Session is an issued access token.
type Session struct {
	Profile   *model.Profile `json:"user"`
	Token     string         `json:"access_token"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// AuthService handles authentication, JWT issuance and revocation.
type AuthService struct {
	cfg      *config.Config
	profiles ProfileStore
	denylist cache.Denylist
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, profiles ProfileStore, denylist cache.Denylist, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		profiles: profiles,
		denylist: denylist,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Signup creates a profile and returns a session for it. The role defaults
// to student; other roles need privileged set by a service-role caller.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest, privileged bool) (*Session, error) {
	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}
	if role != model.RoleStudent && !privileged {
		return nil, ErrServiceRoleRequired
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &model.Profile{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
		PasswordHash: hash,
	}

	var teacher *model.TeacherDetail
	var student *model.StudentDetail
	switch role {
	case model.RoleTeacher:
		teacher = &model.TeacherDetail{Specialty: req.Specialty}
	case model.RoleStudent:
		student = &model.StudentDetail{Institution: req.Institution, Grade: req.Grade}
	}

	if err := s.profiles.Create(ctx, p, teacher, student); err != nil {
		return nil, err
	}
	s.log.Info().Str("profile_id", p.ID.String()).Str("role", string(role)).Msg("Profile created")

	return s.issue(p)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*Session, error) {
	p, err := s.profiles.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.CheckPassword(p.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	return s.issue(p)
}

func (s *AuthService) issue(p *model.Profile) (*Session, error) {
	token, claims, err := s.GenerateToken(p)
	if err != nil {
		return nil, err
	}
	return &Session{Profile: p, Token: token, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// GenerateToken signs an access token for the profile.
func (s *AuthService) GenerateToken(p *model.Profile) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID:       p.ID,
		Role:         p.Role,
		Email:        p.Email,
		IssuedAtNano: now.UnixNano(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// ValidateToken parses a JWT and rejects it when it has been revoked.
func (s *AuthService) ValidateToken(ctx context.Context, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, errors.New("invalid token claims")
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	cutoff, ok, err := s.denylist.SessionsRevokedAt(ctx, claims.UserID.String())
	if err != nil {
		return nil, fmt.Errorf("check session cutoff: %w", err)
	}
	if ok && claims.IssuedAtNano <= cutoff.UnixNano() {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// RevokeSessions invalidates every token issued to the profile so far. Role
// and email travel inside the token, so this runs whenever they go stale.
func (s *AuthService) RevokeSessions(ctx context.Context, profileID uuid.UUID) error {
	if err := s.denylist.RevokeSessions(ctx, profileID.String(), time.Now(), s.cfg.JWTExpiry); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	s.log.Info().Str("profile_id", profileID.String()).Msg("Sessions revoked")
	return nil
}

// Logout revokes the caller's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, id model.Identity) error {
	if id.TokenID == "" {
		return nil
	}
	return s.denylist.Revoke(ctx, id.TokenID, time.Until(id.ExpiresAt))
}

// CurrentUser loads the caller's profile.
func (s *AuthService) CurrentUser(ctx context.Context, id model.Identity) (*model.Profile, error) {
	return s.profiles.GetByID(ctx, id.UserID)
}

// UpdatePassword replaces the password of the profile named by user id or email.
func (s *AuthService) UpdatePassword(ctx context.Context, req model.UpdatePasswordRequest) error {
	var (
		p   *model.Profile
		err error
	)
	if req.UserID != nil {
		p, err = s.profiles.GetByID(ctx, *req.UserID)
	} else {
		p, err = s.profiles.GetByEmail(ctx, req.Email)
	}
	if err != nil {
		return err
	}

	hash, err := s.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.profiles.UpdatePassword(ctx, p.ID, hash); err != nil {
		return err
	}
	s.log.Info().Str("profile_id", p.ID.String()).Msg("Password updated")
	return s.RevokeSessions(ctx, p.ID)
}
