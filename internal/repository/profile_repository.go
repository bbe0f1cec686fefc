package repository

import (
	"context"

	"github.com/epsilon-academy/academy-backend/internal/database"
	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileColumns = `id, email, full_name, role, password_hash, created_at, updated_at`

// ProfileRepository handles profile data access.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	p := &model.Profile{}
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

// Create inserts a profile together with its role-specific detail row.
func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile, teacher *model.TeacherDetail, student *model.StudentDetail) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO profiles (email, full_name, role, password_hash)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at, updated_at`,
			p.Email, p.FullName, p.Role, p.PasswordHash,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return translate(err)
		}

		if teacher != nil {
			teacher.ProfileID = p.ID
			if _, err := tx.Exec(ctx,
				`INSERT INTO teachers (profile_id, specialty, bio) VALUES ($1, $2, $3)`,
				teacher.ProfileID, teacher.Specialty, teacher.Bio,
			); err != nil {
				return translate(err)
			}
		}
		if student != nil {
			student.ProfileID = p.ID
			if _, err := tx.Exec(ctx,
				`INSERT INTO students (profile_id, institution, grade) VALUES ($1, $2, $3)`,
				student.ProfileID, student.Institution, student.Grade,
			); err != nil {
				return translate(err)
			}
		}
		return nil
	})
}

// GetByID retrieves a profile by ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

// GetByEmail retrieves a profile by its unique, case-insensitive email.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return scanProfile(r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, email))
}

// List retrieves profiles matching the filter plus the total match count.
func (r *ProfileRepository) List(ctx context.Context, f model.ProfileFilter) ([]model.Profile, int, error) {
	var cond conditions
	if f.Role != "" {
		cond.add("role = ?", f.Role)
	}
	if f.Search != "" {
		cond.add("(full_name ILIKE ? OR email ILIKE ?)", "%"+f.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`+cond.where(), cond.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageSQL, args := cond.page(f.Limit, f.Offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles`+cond.where()+` ORDER BY full_name`+pageSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, total, rows.Err()
}

// Update modifies a profile's name and role.
func (r *ProfileRepository) Update(ctx context.Context, p *model.Profile) error {
	return translate(r.pool.QueryRow(ctx,
		`UPDATE profiles SET full_name = $1, role = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3 RETURNING updated_at`,
		p.FullName, p.Role, p.ID,
	).Scan(&p.UpdatedAt))
}

// UpdatePassword replaces a profile's password hash.
func (r *ProfileRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return expectOne(r.pool.Exec(ctx,
		`UPDATE profiles SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	))
}

// CountByRole returns the number of profiles per role.
func (r *ProfileRepository) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM profiles GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Role]int)
	for rows.Next() {
		var role model.Role
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}
