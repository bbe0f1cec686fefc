package repository

import (
	"context"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const liveClassColumns = `id, course_id, title, scheduled_at, duration_minutes, meeting_link,
	max_participants, participant_count, status, created_at, updated_at`

// LiveClassRepository handles live class data access.
type LiveClassRepository struct {
	pool *pgxpool.Pool
}

// NewLiveClassRepository creates a new LiveClassRepository.
func NewLiveClassRepository(pool *pgxpool.Pool) *LiveClassRepository {
	return &LiveClassRepository{pool: pool}
}

func scanLiveClass(row pgx.Row) (*model.LiveClass, error) {
	l := &model.LiveClass{}
	err := row.Scan(&l.ID, &l.CourseID, &l.Title, &l.ScheduledAt, &l.DurationMinutes, &l.MeetingLink,
		&l.MaxParticipants, &l.ParticipantCount, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return l, nil
}

// Create inserts a live class.
func (r *LiveClassRepository) Create(ctx context.Context, l *model.LiveClass) error {
	return translate(r.pool.QueryRow(ctx,
		`INSERT INTO live_classes (course_id, title, scheduled_at, duration_minutes, meeting_link, max_participants, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, participant_count, created_at, updated_at`,
		l.CourseID, l.Title, l.ScheduledAt, l.DurationMinutes, l.MeetingLink, l.MaxParticipants, l.Status,
	).Scan(&l.ID, &l.ParticipantCount, &l.CreatedAt, &l.UpdatedAt))
}

// GetByID retrieves a live class by its ID.
func (r *LiveClassRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.LiveClass, error) {
	return scanLiveClass(r.pool.QueryRow(ctx, `SELECT `+liveClassColumns+` FROM live_classes WHERE id = $1`, id))
}

// List retrieves live classes ordered by schedule. A nil CourseIDs means
// every course; an empty non-nil slice matches nothing.
func (r *LiveClassRepository) List(ctx context.Context, f model.LiveClassFilter) ([]model.LiveClass, int, error) {
	var cond conditions
	if f.CourseIDs != nil {
		cond.add("course_id = ANY(?)", f.CourseIDs)
	}
	if f.UpcomingOnly {
		cond.raw("scheduled_at + make_interval(mins => duration_minutes) >= CURRENT_TIMESTAMP")
		cond.raw("status IN ('scheduled', 'live')")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM live_classes`+cond.where(), cond.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageSQL, args := cond.page(f.Limit, f.Offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+liveClassColumns+` FROM live_classes`+cond.where()+` ORDER BY scheduled_at`+pageSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	classes := []model.LiveClass{}
	for rows.Next() {
		l, err := scanLiveClass(rows)
		if err != nil {
			return nil, 0, err
		}
		classes = append(classes, *l)
	}
	return classes, total, rows.Err()
}

// Update modifies a live class.
func (r *LiveClassRepository) Update(ctx context.Context, l *model.LiveClass) error {
	return translate(r.pool.QueryRow(ctx,
		`UPDATE live_classes SET title = $1, scheduled_at = $2, duration_minutes = $3, meeting_link = $4,
		 max_participants = $5, status = $6, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $7 RETURNING updated_at`,
		l.Title, l.ScheduledAt, l.DurationMinutes, l.MeetingLink, l.MaxParticipants, l.Status, l.ID,
	).Scan(&l.UpdatedAt))
}

// Transition moves a live class from one status to another. It reports
// false when the class is no longer in the from status.
func (r *LiveClassRepository) Transition(ctx context.Context, id uuid.UUID, from, to model.LiveClassStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE live_classes SET status = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetParticipantCount records the current number of connected participants.
func (r *LiveClassRepository) SetParticipantCount(ctx context.Context, id uuid.UUID, count int) error {
	return expectOne(r.pool.Exec(ctx,
		`UPDATE live_classes SET participant_count = $1 WHERE id = $2`, count, id))
}

// Delete removes a live class.
func (r *LiveClassRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM live_classes WHERE id = $1`, id))
}
