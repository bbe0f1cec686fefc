package handler

import (
	"net/http"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/middleware"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/epsilon-academy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService    *service.AuthService
	serviceRoleKey string
	cookieName     string
	secureCookie   bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, serviceRoleKey, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		serviceRoleKey: serviceRoleKey,
		cookieName:     cookieName,
		secureCookie:   secureCookie,
	}
}

// Signup godoc
// POST /api/auth/signup
// Creates a profile. Teacher and admin profiles need the service-role key.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	privileged := middleware.CheckServiceRole(c, h.serviceRoleKey) == middleware.ServiceRoleValid
	session, err := h.authService.Signup(c.Request.Context(), req, privileged)
	if err != nil {
		writeError(c, err)
		return
	}

	h.setSessionCookie(c, session.Token, session.ExpiresAt)
	response.Success(c, http.StatusCreated, session)
}

// Login godoc
// POST /api/auth/login
// Validates email + password, returns a JWT and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	h.setSessionCookie(c, session.Token, session.ExpiresAt)
	response.Success(c, http.StatusOK, session)
}

// Logout godoc
// POST /api/auth/logout
// Revokes the current token and clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.MustIdentity(c)); err != nil {
		response.Internal(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, gin.H{})
}

// CurrentUser godoc
// GET /api/auth/user
// Returns the caller's profile and the permissions of its role.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	id := middleware.MustIdentity(c)

	profile, err := h.authService.CurrentUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":        profile,
		"permissions": id.Role.Permissions(),
	})
}

// UpdatePassword godoc
// POST /api/update-password
// Privileged password reset, guarded by RequireServiceRole.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var req model.UpdatePasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.UpdatePassword(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "password updated"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	if h.cookieName == "" {
		return
	}
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, maxAge, "/", "", h.secureCookie, true)
}
