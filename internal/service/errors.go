package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/epsilon-academy/academy-backend/internal/repository"
)

// Storage errors surfaced unchanged to handlers.
var (
	ErrNotFound   = repository.ErrNotFound
	ErrDuplicate  = repository.ErrDuplicate
	ErrReferenced = repository.ErrReferenced
	ErrCourseFull = repository.ErrCourseFull
)

// Domain errors.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrServiceRoleRequired = errors.New("service role required to create privileged profiles")
	ErrForbidden           = errors.New("operation not allowed for this role")
	ErrNotCourseOwner      = errors.New("not the teacher of this course")
	ErrStudentScope        = errors.New("students may only access their own records")
	ErrCourseInactive      = errors.New("course is not open for enrollment")
	ErrLiveClassClosed     = errors.New("live class is finished or cancelled")
)

// ValidationError reports business-rule violations keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// normalizePage clamps limit/offset to the accepted window.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
