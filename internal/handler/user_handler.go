package handler

import (
	"net/http"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/epsilon-academy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// UserHandler handles admin profile management.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type listUsersQuery struct {
	Role   model.Role `form:"role" binding:"omitempty,oneof=admin teacher student"`
	Search string     `form:"search" binding:"omitempty,max=200"`
	Limit  int        `form:"limit" binding:"omitempty,min=0"`
	Offset int        `form:"offset" binding:"omitempty,min=0"`
}

// ListUsers godoc
// GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q listUsersQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, fields)
		return
	}

	users, page, err := h.userService.List(c.Request.Context(), model.ProfileFilter{
		Role:   q.Role,
		Search: q.Search,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"users": users}, page)
}

// UpdateUser godoc
// PATCH /api/users/:id
// Changes a profile's full name and/or role.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
