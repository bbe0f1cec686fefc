package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/epsilon-academy/academy-backend/internal/response"
	"github.com/epsilon-academy/academy-backend/internal/service"
	"github.com/epsilon-academy/academy-backend/internal/statistics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// writeError maps a service error onto the response envelope. Unknown
// errors become a 500 carrying the backend message as details.
func writeError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, ve.Fields)
	case errors.Is(err, statistics.ErrUnknownDimension):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery,
			map[string]string{"dimension": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrCourseFull):
		response.Fail(c, http.StatusConflict, response.ErrCourseFull)
	case errors.Is(err, service.ErrDuplicate):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrReferenced):
		response.Fail(c, http.StatusConflict, response.ErrDependencyExists)
	case errors.Is(err, service.ErrCourseInactive):
		response.Fail(c, http.StatusConflict, response.ErrCourseInactive)
	case errors.Is(err, service.ErrLiveClassClosed):
		response.Fail(c, http.StatusConflict, response.ErrLiveClassClosed)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrTokenRevoked):
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
	case errors.Is(err, service.ErrServiceRoleRequired):
		response.Fail(c, http.StatusForbidden, response.ErrServiceRoleOnly)
	case errors.Is(err, service.ErrNotCourseOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotCourseOwner)
	case errors.Is(err, service.ErrStudentScope):
		response.Fail(c, http.StatusForbidden, response.ErrStudentScopeDenied)
	case errors.Is(err, service.ErrForbidden):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	default:
		response.Internal(c, err)
	}
}

// paramUUID parses a UUID path parameter, answering 400 on failure.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads limit/offset; malformed values fall back to defaults.
func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	return limit, offset
}
