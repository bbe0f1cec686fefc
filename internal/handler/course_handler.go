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

// CourseHandler handles course CRUD.
type CourseHandler struct {
	courseService *service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

type listCoursesQuery struct {
	Status    model.CourseStatus `form:"status" binding:"omitempty,oneof=draft active archived"`
	TeacherID string             `form:"teacher_id" binding:"omitempty,uuid"`
	Search    string             `form:"search" binding:"omitempty,max=200"`
	Scope     string             `form:"scope" binding:"omitempty,oneof=catalog mine"`
	Limit     int                `form:"limit" binding:"omitempty,min=0"`
	Offset    int                `form:"offset" binding:"omitempty,min=0"`
}

// ListCourses godoc
// GET /api/courses
// Lists courses visible to the caller. Students pass scope=catalog to browse
// active courses.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var q listCoursesQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, fields)
		return
	}

	opts := service.CourseListOptions{
		Status:  q.Status,
		Search:  q.Search,
		Catalog: q.Scope == "catalog",
		Limit:   q.Limit,
		Offset:  q.Offset,
	}
	if q.TeacherID != "" {
		id := uuid.MustParse(q.TeacherID)
		opts.TeacherID = &id
	}

	courses, page, err := h.courseService.List(c.Request.Context(), middleware.MustIdentity(c), opts)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"courses": courses}, page)
}

// GetCourse godoc
// GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.Get(c.Request.Context(), middleware.MustIdentity(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// CreateCourse godoc
// POST /api/courses
// Teachers own the courses they create; admins name the teacher.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req model.CreateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), middleware.MustIdentity(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"course": course})
}

// UpdateCourse godoc
// PUT /api/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateCourseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), middleware.MustIdentity(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"course": course})
}

// DeleteCourse godoc
// DELETE /api/courses/:id
// Removes the course with its enrollments and live classes.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), middleware.MustIdentity(c), id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "course deleted"})
}
