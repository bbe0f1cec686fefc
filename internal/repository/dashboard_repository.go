package repository

import (
	"context"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles admin dashboard data access.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level totals for the dashboard.
func (r *DashboardRepository) GetSummaryCounts(ctx context.Context) (model.DashboardCounts, error) {
	var c model.DashboardCounts
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM profiles WHERE role = 'admin'),
			(SELECT COUNT(*) FROM profiles WHERE role = 'teacher'),
			(SELECT COUNT(*) FROM profiles WHERE role = 'student'),
			(SELECT COUNT(*) FROM courses),
			(SELECT COUNT(*) FROM courses WHERE status = 'active'),
			(SELECT COUNT(*) FROM course_enrollments WHERE status = 'active'),
			(SELECT COUNT(*) FROM evaluation_results)`,
	).Scan(&c.Admins, &c.Teachers, &c.Students, &c.Courses, &c.ActiveCourses, &c.ActiveEnrollments, &c.Evaluations)
	return c, err
}
