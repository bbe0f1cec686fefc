package memory

import (
	"context"

	"github.com/epsilon-academy/academy-backend/internal/model"
)

// DashboardRepository is the in-memory dashboard counter.
type DashboardRepository struct {
	db *DB
}

// NewDashboardRepository creates a DashboardRepository over db.
func NewDashboardRepository(db *DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) GetSummaryCounts(_ context.Context) (model.DashboardCounts, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var c model.DashboardCounts
	for _, p := range r.db.profiles {
		switch p.Role {
		case model.RoleAdmin:
			c.Admins++
		case model.RoleTeacher:
			c.Teachers++
		case model.RoleStudent:
			c.Students++
		}
	}
	c.Courses = len(r.db.courses)
	for _, course := range r.db.courses {
		if course.Status == model.CourseStatusActive {
			c.ActiveCourses++
		}
	}
	for _, e := range r.db.enrollments {
		if e.Status == model.EnrollmentStatusActive {
			c.ActiveEnrollments++
		}
	}
	c.Evaluations = len(r.db.evaluations)
	return c, nil
}
