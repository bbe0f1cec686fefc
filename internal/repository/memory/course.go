package memory

import (
	"context"
	"sort"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository"
	"github.com/google/uuid"
)

// CourseRepository is the in-memory course store.
type CourseRepository struct {
	db *DB
}

// NewCourseRepository creates a CourseRepository over db.
func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// activeCount must be called with the lock held.
func (db *DB) activeCount(courseID uuid.UUID) int {
	n := 0
	for _, e := range db.enrollments {
		if e.CourseID == courseID && e.Status == model.EnrollmentStatusActive {
			n++
		}
	}
	return n
}

func (r *CourseRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.EnrolledCount = r.db.activeCount(id)
	return &c, nil
}

func (r *CourseRepository) List(_ context.Context, f model.CourseFilter) ([]model.Course, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []model.Course{}
	for _, c := range r.db.courses {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.TeacherID != nil && c.TeacherID != *f.TeacherID {
			continue
		}
		if f.StudentID != nil && !r.enrolled(c.ID, *f.StudentID) {
			continue
		}
		if f.Search != "" && !containsFold(c.Title, f.Search) && !containsFold(c.Description, f.Search) {
			continue
		}
		c.EnrolledCount = r.db.activeCount(c.ID)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *CourseRepository) enrolled(courseID, studentID uuid.UUID) bool {
	for _, e := range r.db.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID && e.Status != model.EnrollmentStatusDropped {
			return true
		}
	}
	return false
}

func (r *CourseRepository) Create(_ context.Context, c *model.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.profiles[c.TeacherID]; !ok {
		return repository.ErrReferenced
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = r.db.now()
	c.UpdatedAt = c.CreatedAt
	r.db.courses[c.ID] = *c
	return nil
}

func (r *CourseRepository) Update(_ context.Context, c *model.Course) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.courses[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Title = c.Title
	existing.Description = c.Description
	existing.Status = c.Status
	existing.Schedule = c.Schedule
	existing.Capacity = c.Capacity
	existing.UpdatedAt = r.db.now()
	r.db.courses[c.ID] = existing
	c.UpdatedAt = existing.UpdatedAt
	return nil
}

// Delete removes the course, cascading to enrollments and live classes.
func (r *CourseRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.courses, id)
	for eid, e := range r.db.enrollments {
		if e.CourseID == id {
			delete(r.db.enrollments, eid)
		}
	}
	for lid, l := range r.db.liveClasses {
		if l.CourseID == id {
			delete(r.db.liveClasses, lid)
		}
	}
	for gid, g := range r.db.groups {
		if g.CourseID != nil && *g.CourseID == id {
			g.CourseID = nil
			r.db.groups[gid] = g
		}
	}
	for rid, e := range r.db.evaluations {
		if e.CourseID != nil && *e.CourseID == id {
			e.CourseID = nil
			r.db.evaluations[rid] = e
		}
	}
	return nil
}
