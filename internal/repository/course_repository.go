package repository

import (
	"context"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseSelect = `SELECT c.id, c.title, c.description, c.status, c.schedule, c.capacity, c.teacher_id,
	(SELECT COUNT(*) FROM course_enrollments e WHERE e.course_id = c.id AND e.status = 'active'),
	c.created_at, c.updated_at
	FROM courses c`

// CourseRepository handles course data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	c := &model.Course{}
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Status, &c.Schedule, &c.Capacity,
		&c.TeacherID, &c.EnrolledCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// GetByID retrieves a course by its ID.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return scanCourse(r.pool.QueryRow(ctx, courseSelect+` WHERE c.id = $1`, id))
}

// List retrieves courses matching the filter plus the total match count.
func (r *CourseRepository) List(ctx context.Context, f model.CourseFilter) ([]model.Course, int, error) {
	var cond conditions
	if f.Status != "" {
		cond.add("c.status = ?", f.Status)
	}
	if f.TeacherID != nil {
		cond.add("c.teacher_id = ?", *f.TeacherID)
	}
	if f.StudentID != nil {
		cond.add(`EXISTS (SELECT 1 FROM course_enrollments e
			WHERE e.course_id = c.id AND e.student_id = ? AND e.status <> 'dropped')`, *f.StudentID)
	}
	if f.Search != "" {
		cond.add("(c.title ILIKE ? OR c.description ILIKE ?)", "%"+f.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses c`+cond.where(), cond.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageSQL, args := cond.page(f.Limit, f.Offset)
	rows, err := r.pool.Query(ctx, courseSelect+cond.where()+` ORDER BY c.created_at DESC`+pageSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, *c)
	}
	return courses, total, rows.Err()
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	return translate(r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, status, schedule, capacity, teacher_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		c.Title, c.Description, c.Status, c.Schedule, c.Capacity, c.TeacherID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt))
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	return translate(r.pool.QueryRow(ctx,
		`UPDATE courses SET title = $1, description = $2, status = $3, schedule = $4, capacity = $5,
		 updated_at = CURRENT_TIMESTAMP
		 WHERE id = $6 RETURNING updated_at`,
		c.Title, c.Description, c.Status, c.Schedule, c.Capacity, c.ID,
	).Scan(&c.UpdatedAt))
}

// Delete removes a course by its ID. Enrollments cascade; evaluation
// results keep their rows with course_id cleared.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id))
}
