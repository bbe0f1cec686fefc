// Package memory is an in-process implementation of the repository layer.
// It backs skip mode and the service and handler tests. Every repository
// created from the same DB shares its state.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
)

// DB holds every table in maps guarded by a single lock.
type DB struct {
	mu sync.RWMutex

	profiles    map[uuid.UUID]model.Profile
	teachers    map[uuid.UUID]model.TeacherDetail
	students    map[uuid.UUID]model.StudentDetail
	courses     map[uuid.UUID]model.Course
	enrollments map[uuid.UUID]model.Enrollment
	groups      map[uuid.UUID]model.Group
	messages    map[uuid.UUID]model.Message
	liveClasses map[uuid.UUID]model.LiveClass
	evaluations map[uuid.UUID]model.EvaluationResult

	now func() time.Time
}

// NewDB returns an empty DB.
func NewDB() *DB {
	return &DB{
		profiles:    make(map[uuid.UUID]model.Profile),
		teachers:    make(map[uuid.UUID]model.TeacherDetail),
		students:    make(map[uuid.UUID]model.StudentDetail),
		courses:     make(map[uuid.UUID]model.Course),
		enrollments: make(map[uuid.UUID]model.Enrollment),
		groups:      make(map[uuid.UUID]model.Group),
		messages:    make(map[uuid.UUID]model.Message),
		liveClasses: make(map[uuid.UUID]model.LiveClass),
		evaluations: make(map[uuid.UUID]model.EvaluationResult),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// paginate slices items by limit and offset. A non-positive limit returns
// everything after offset.
func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func sameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
