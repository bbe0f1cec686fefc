package repository

import (
	"context"
	"errors"

	"github.com/epsilon-academy/academy-backend/internal/database"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const enrollmentSelect = `SELECT e.id, e.course_id, e.student_id, p.full_name, e.status, e.progress, e.enrolled_at, e.updated_at
	FROM course_enrollments e JOIN profiles p ON p.id = e.student_id`

// EnrollmentRepository handles course enrollment data access.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

func scanEnrollment(row pgx.Row) (*model.Enrollment, error) {
	e := &model.Enrollment{}
	err := row.Scan(&e.ID, &e.CourseID, &e.StudentID, &e.StudentName, &e.Status, &e.Progress, &e.EnrolledAt, &e.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return e, nil
}

func (r *EnrollmentRepository) list(ctx context.Context, where string, arg interface{}) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx, enrollmentSelect+where+` ORDER BY e.enrolled_at`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	enrollments := []model.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, *e)
	}
	return enrollments, rows.Err()
}

// lockCourse takes the course row lock that serializes capacity checks.
func lockCourse(ctx context.Context, tx pgx.Tx, courseID uuid.UUID) error {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM courses WHERE id = $1 FOR UPDATE`, courseID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrReferenced
	}
	return translate(err)
}

func activeCount(ctx context.Context, tx pgx.Tx, courseID uuid.UUID) (int, error) {
	var n int
	err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM course_enrollments WHERE course_id = $1 AND status = 'active'`, courseID,
	).Scan(&n)
	return n, err
}

// Create enrolls a student as long as the course has fewer active
// enrollments than capacity. The course row is locked for the duration of
// the check so concurrent enrollments into one course queue up.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment, capacity int) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockCourse(ctx, tx, e.CourseID); err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM course_enrollments WHERE course_id = $1 AND student_id = $2)`,
			e.CourseID, e.StudentID,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrDuplicate
		}

		n, err := activeCount(ctx, tx, e.CourseID)
		if err != nil {
			return err
		}
		if n >= capacity {
			return ErrCourseFull
		}

		return translate(tx.QueryRow(ctx,
			`INSERT INTO course_enrollments (course_id, student_id, status, progress)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, enrolled_at, updated_at`,
			e.CourseID, e.StudentID, e.Status, e.Progress,
		).Scan(&e.ID, &e.EnrolledAt, &e.UpdatedAt))
	})
}

// GetByID retrieves an enrollment by its ID.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Enrollment, error) {
	return scanEnrollment(r.pool.QueryRow(ctx, enrollmentSelect+` WHERE e.id = $1`, id))
}

// ListByCourse retrieves all enrollments of a course.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]model.Enrollment, error) {
	return r.list(ctx, ` WHERE e.course_id = $1`, courseID)
}

// ListByStudent retrieves all enrollments of a student.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Enrollment, error) {
	return r.list(ctx, ` WHERE e.student_id = $1`, studentID)
}

// CountActive returns the number of active enrollments across all courses.
func (r *EnrollmentRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM course_enrollments WHERE status = 'active'`).Scan(&n)
	return n, err
}

// Update modifies status and progress. Moving an enrollment back to active
// fails with ErrCourseFull when the course already holds capacity active
// enrollments.
func (r *EnrollmentRepository) Update(ctx context.Context, e *model.Enrollment, capacity int) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if e.Status == model.EnrollmentStatusActive {
			if err := lockCourse(ctx, tx, e.CourseID); err != nil {
				return err
			}
			var current model.EnrollmentStatus
			err := tx.QueryRow(ctx,
				`SELECT status FROM course_enrollments WHERE id = $1 FOR UPDATE`, e.ID,
			).Scan(&current)
			if err != nil {
				return translate(err)
			}
			if current != model.EnrollmentStatusActive {
				n, err := activeCount(ctx, tx, e.CourseID)
				if err != nil {
					return err
				}
				if n >= capacity {
					return ErrCourseFull
				}
			}
		}

		return translate(tx.QueryRow(ctx,
			`UPDATE course_enrollments SET status = $1, progress = $2, updated_at = CURRENT_TIMESTAMP
			 WHERE id = $3 RETURNING updated_at`,
			e.Status, e.Progress, e.ID,
		).Scan(&e.UpdatedAt))
	})
}

// Delete removes an enrollment by its ID.
func (r *EnrollmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM course_enrollments WHERE id = $1`, id))
}
