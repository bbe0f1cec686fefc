package memory

import (
	"context"
	"sort"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository"
	"github.com/google/uuid"
)

// ProfileRepository is the in-memory profile store.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a ProfileRepository over db.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(_ context.Context, p *model.Profile, teacher *model.TeacherDetail, student *model.StudentDetail) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.profiles {
		if sameText(existing.Email, p.Email) {
			return repository.ErrDuplicate
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.db.now()
	p.UpdatedAt = p.CreatedAt
	r.db.profiles[p.ID] = *p

	if teacher != nil {
		teacher.ProfileID = p.ID
		r.db.teachers[p.ID] = *teacher
	}
	if student != nil {
		student.ProfileID = p.ID
		r.db.students[p.ID] = *student
	}
	return nil
}

func (r *ProfileRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *ProfileRepository) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, p := range r.db.profiles {
		if sameText(p.Email, email) {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ProfileRepository) List(_ context.Context, f model.ProfileFilter) ([]model.Profile, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []model.Profile{}
	for _, p := range r.db.profiles {
		if f.Role != "" && p.Role != f.Role {
			continue
		}
		if f.Search != "" && !containsFold(p.FullName, f.Search) && !containsFold(p.Email, f.Search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *ProfileRepository) Update(_ context.Context, p *model.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.profiles[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.FullName = p.FullName
	existing.Role = p.Role
	existing.UpdatedAt = r.db.now()
	r.db.profiles[p.ID] = existing
	p.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *ProfileRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.PasswordHash = passwordHash
	p.UpdatedAt = r.db.now()
	r.db.profiles[id] = p
	return nil
}

func (r *ProfileRepository) CountByRole(_ context.Context) (map[model.Role]int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	counts := make(map[model.Role]int)
	for _, p := range r.db.profiles {
		counts[p.Role]++
	}
	return counts, nil
}
