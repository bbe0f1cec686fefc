package handler

import (
	"net/http"

	"github.com/epsilon-academy/academy-backend/internal/middleware"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/epsilon-academy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LiveClassHandler handles live class scheduling.
type LiveClassHandler struct {
	liveClassService *service.LiveClassService
}

// NewLiveClassHandler creates a new LiveClassHandler.
func NewLiveClassHandler(liveClassService *service.LiveClassService) *LiveClassHandler {
	return &LiveClassHandler{liveClassService: liveClassService}
}

type listLiveClassesQuery struct {
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
	Upcoming bool   `form:"upcoming"`
	Limit    int    `form:"limit" binding:"omitempty,min=0"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

// ListLiveClasses godoc
// GET /api/live-classes
func (h *LiveClassHandler) ListLiveClasses(c *gin.Context) {
	var q listLiveClassesQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, fields)
		return
	}

	opts := service.LiveClassListOptions{UpcomingOnly: q.Upcoming, Limit: q.Limit, Offset: q.Offset}
	if q.CourseID != "" {
		id := uuid.MustParse(q.CourseID)
		opts.CourseID = &id
	}

	list, page, err := h.liveClassService.List(c.Request.Context(), middleware.MustIdentity(c), opts)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"live_classes": list}, page)
}

// CreateLiveClass godoc
// POST /api/live-classes
func (h *LiveClassHandler) CreateLiveClass(c *gin.Context) {
	var req model.CreateLiveClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	l, err := h.liveClassService.Create(c.Request.Context(), middleware.MustIdentity(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"live_class": l})
}

// UpdateLiveClass godoc
// PUT /api/live-classes/:id
func (h *LiveClassHandler) UpdateLiveClass(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateLiveClassRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	l, err := h.liveClassService.Update(c.Request.Context(), middleware.MustIdentity(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"live_class": l})
}

// DeleteLiveClass godoc
// DELETE /api/live-classes/:id
func (h *LiveClassHandler) DeleteLiveClass(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.liveClassService.Delete(c.Request.Context(), middleware.MustIdentity(c), id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "live class deleted"})
}
