package repository

import (
	"context"

	"github.com/epsilon-academy/academy-backend/internal/database"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const groupSelect = `SELECT g.id, g.name, g.description, g.course_id, g.created_by, g.created_at,
	COALESCE(ARRAY(SELECT m.student_id FROM group_members m WHERE m.group_id = g.id ORDER BY m.added_at), '{}')
	FROM groups g`

// GroupRepository handles group and membership data access.
type GroupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

func scanGroup(row pgx.Row) (*model.Group, error) {
	g := &model.Group{}
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.CourseID, &g.CreatedBy, &g.CreatedAt, &g.MemberIDs)
	if err != nil {
		return nil, translate(err)
	}
	return g, nil
}

// Create inserts a group and its initial members atomically.
func (r *GroupRepository) Create(ctx context.Context, g *model.Group) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO groups (name, description, course_id, created_by)
			 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			g.Name, g.Description, g.CourseID, g.CreatedBy,
		).Scan(&g.ID, &g.CreatedAt)
		if err != nil {
			return translate(err)
		}
		for _, id := range g.MemberIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO group_members (group_id, student_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				g.ID, id,
			); err != nil {
				return translate(err)
			}
		}
		if g.MemberIDs == nil {
			g.MemberIDs = []uuid.UUID{}
		}
		return nil
	})
}

// GetByID retrieves a group with its member ids.
func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	return scanGroup(r.pool.QueryRow(ctx, groupSelect+` WHERE g.id = $1`, id))
}

// List retrieves groups. A non-nil memberID restricts the result to groups
// the student belongs to.
func (r *GroupRepository) List(ctx context.Context, memberID *uuid.UUID) ([]model.Group, error) {
	var cond conditions
	if memberID != nil {
		cond.add(`EXISTS (SELECT 1 FROM group_members m WHERE m.group_id = g.id AND m.student_id = ?)`, *memberID)
	}

	rows, err := r.pool.Query(ctx, groupSelect+cond.where()+` ORDER BY g.name`, cond.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// AddMember adds a student to a group.
func (r *GroupRepository) AddMember(ctx context.Context, groupID, studentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO group_members (group_id, student_id) VALUES ($1, $2)`, groupID, studentID)
	return translate(err)
}

// RemoveMember removes a student from a group.
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, studentID uuid.UUID) error {
	return expectOne(r.pool.Exec(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND student_id = $2`, groupID, studentID))
}

// Delete removes a group.
func (r *GroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return expectOne(r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id))
}
