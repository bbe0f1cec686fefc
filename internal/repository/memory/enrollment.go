package memory

import (
	"context"
	"sort"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository"
	"github.com/google/uuid"
)

// EnrollmentRepository is the in-memory enrollment store.
type EnrollmentRepository struct {
	db *DB
}

// NewEnrollmentRepository creates an EnrollmentRepository over db.
func NewEnrollmentRepository(db *DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) withName(e model.Enrollment) model.Enrollment {
	if p, ok := r.db.profiles[e.StudentID]; ok {
		e.StudentName = p.FullName
	}
	return e
}

func (r *EnrollmentRepository) Create(_ context.Context, e *model.Enrollment, capacity int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.courses[e.CourseID]; !ok {
		return repository.ErrReferenced
	}
	if _, ok := r.db.profiles[e.StudentID]; !ok {
		return repository.ErrReferenced
	}
	for _, existing := range r.db.enrollments {
		if existing.CourseID == e.CourseID && existing.StudentID == e.StudentID {
			return repository.ErrDuplicate
		}
	}
	if r.db.activeCount(e.CourseID) >= capacity {
		return repository.ErrCourseFull
	}

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.EnrolledAt = r.db.now()
	e.UpdatedAt = e.EnrolledAt
	r.db.enrollments[e.ID] = *e
	*e = r.withName(*e)
	return nil
}

func (r *EnrollmentRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Enrollment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	e, ok := r.db.enrollments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = r.withName(e)
	return &e, nil
}

func (r *EnrollmentRepository) list(match func(model.Enrollment) bool) []model.Enrollment {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []model.Enrollment{}
	for _, e := range r.db.enrollments {
		if match(e) {
			out = append(out, r.withName(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.Before(out[j].EnrolledAt) })
	return out
}

func (r *EnrollmentRepository) ListByCourse(_ context.Context, courseID uuid.UUID) ([]model.Enrollment, error) {
	return r.list(func(e model.Enrollment) bool { return e.CourseID == courseID }), nil
}

func (r *EnrollmentRepository) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.Enrollment, error) {
	return r.list(func(e model.Enrollment) bool { return e.StudentID == studentID }), nil
}

func (r *EnrollmentRepository) CountActive(_ context.Context) (int, error) {
	return len(r.list(func(e model.Enrollment) bool { return e.Status == model.EnrollmentStatusActive })), nil
}

func (r *EnrollmentRepository) Update(_ context.Context, e *model.Enrollment, capacity int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.enrollments[e.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if e.Status == model.EnrollmentStatusActive && existing.Status != model.EnrollmentStatusActive &&
		r.db.activeCount(existing.CourseID) >= capacity {
		return repository.ErrCourseFull
	}
	existing.Status = e.Status
	existing.Progress = e.Progress
	existing.UpdatedAt = r.db.now()
	r.db.enrollments[e.ID] = existing
	e.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *EnrollmentRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.enrollments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.enrollments, id)
	return nil
}
