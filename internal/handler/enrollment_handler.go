package handler

import (
	"errors"
	"net/http"

	"github.com/epsilon-academy/academy-backend/internal/middleware"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/epsilon-academy/academy-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// EnrollmentHandler handles course enrollments.
type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
}

// NewEnrollmentHandler creates a new EnrollmentHandler.
func NewEnrollmentHandler(enrollmentService *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

// ListEnrollments godoc
// GET /api/courses/:id/enrollments
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	list, err := h.enrollmentService.ListByCourse(c.Request.Context(), middleware.MustIdentity(c), courseID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollments": list})
}

// Enroll godoc
// POST /api/courses/:id/enrollments
// Enrolls a student. 409 when the course is full or the student is already in it.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.CreateEnrollmentRequest
	if c.Request.ContentLength != 0 {
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
	}

	e, err := h.enrollmentService.Enroll(c.Request.Context(), middleware.MustIdentity(c), courseID, req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicate) {
			response.Fail(c, http.StatusConflict, response.ErrAlreadyEnrolled)
			return
		}
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"enrollment": e})
}

// UpdateEnrollment godoc
// PATCH /api/enrollments/:id
func (h *EnrollmentHandler) UpdateEnrollment(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateEnrollmentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	e, err := h.enrollmentService.Update(c.Request.Context(), middleware.MustIdentity(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"enrollment": e})
}

// DeleteEnrollment godoc
// DELETE /api/enrollments/:id
func (h *EnrollmentHandler) DeleteEnrollment(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.enrollmentService.Delete(c.Request.Context(), middleware.MustIdentity(c), id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "enrollment deleted"})
}
