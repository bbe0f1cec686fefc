package memory

import (
	"context"
	"sort"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository"
	"github.com/google/uuid"
)

// EvaluationRepository is the in-memory evaluation result store.
type EvaluationRepository struct {
	db *DB
}

// NewEvaluationRepository creates an EvaluationRepository over db.
func NewEvaluationRepository(db *DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

func matchesFilter(e *model.EvaluationResult, f model.EvaluationFilter) bool {
	switch {
	case f.StudentID != nil && e.StudentID != *f.StudentID:
		return false
	case f.CourseID != nil && (e.CourseID == nil || *e.CourseID != *f.CourseID):
		return false
	case f.GroupID != nil && (e.GroupID == nil || *e.GroupID != *f.GroupID):
		return false
	case f.Institucion != "" && !sameText(e.Institucion, f.Institucion):
		return false
	case f.Servicio != "" && !sameText(e.Servicio, f.Servicio):
		return false
	case f.From != nil && e.FechaInicio.Before(*f.From):
		return false
	case f.To != nil && e.FechaInicio.After(*f.To):
		return false
	}
	return true
}

func (r *EvaluationRepository) Create(_ context.Context, e *model.EvaluationResult) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.profiles[e.StudentID]; !ok {
		return repository.ErrReferenced
	}
	if e.CourseID != nil {
		if _, ok := r.db.courses[*e.CourseID]; !ok {
			return repository.ErrReferenced
		}
	}
	if e.GroupID != nil {
		if _, ok := r.db.groups[*e.GroupID]; !ok {
			return repository.ErrReferenced
		}
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = r.db.now()
	r.db.evaluations[e.ID] = *e
	return nil
}

func (r *EvaluationRepository) GetByID(_ context.Context, id uuid.UUID) (*model.EvaluationResult, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	e, ok := r.db.evaluations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *EvaluationRepository) selectMatching(f model.EvaluationFilter) []model.EvaluationResult {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []model.EvaluationResult{}
	for _, e := range r.db.evaluations {
		if matchesFilter(&e, f) {
			out = append(out, e)
		}
	}
	return out
}

func (r *EvaluationRepository) List(_ context.Context, f model.EvaluationFilter) ([]model.EvaluationResult, int, error) {
	out := r.selectMatching(f)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FechaInicio.Equal(out[j].FechaInicio) {
			return out[i].FechaInicio.After(out[j].FechaInicio)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *EvaluationRepository) ListAll(_ context.Context, f model.EvaluationFilter) ([]model.EvaluationResult, error) {
	out := r.selectMatching(f)
	sort.Slice(out, func(i, j int) bool { return out[i].FechaInicio.Before(out[j].FechaInicio) })
	return out, nil
}

func (r *EvaluationRepository) Count(_ context.Context) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return len(r.db.evaluations), nil
}
