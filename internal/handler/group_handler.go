package handler

import (
	"net/http"

	"github.com/epsilon-academy/academy-backend/internal/middleware"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/epsilon-academy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// GroupHandler handles student groups.
type GroupHandler struct {
	groupService *service.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// ListGroups godoc
// GET /api/groups
// Students only see the groups they belong to.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupService.List(c.Request.Context(), middleware.MustIdentity(c))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"groups": groups})
}

// CreateGroup godoc
// POST /api/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req model.CreateGroupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	g, err := h.groupService.Create(c.Request.Context(), middleware.MustIdentity(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"group": g})
}

// AddMember godoc
// POST /api/groups/:id/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.AddGroupMemberRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	g, err := h.groupService.AddMember(c.Request.Context(), middleware.MustIdentity(c), groupID, req.StudentID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"group": g})
}

// RemoveMember godoc
// DELETE /api/groups/:id/members/:student_id
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	studentID, ok := paramUUID(c, "student_id")
	if !ok {
		return
	}

	if err := h.groupService.RemoveMember(c.Request.Context(), middleware.MustIdentity(c), groupID, studentID); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "member removed"})
}
