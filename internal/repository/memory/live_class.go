package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository"
	"github.com/google/uuid"
)

// LiveClassRepository is the in-memory live class store.
type LiveClassRepository struct {
	db *DB
}

// NewLiveClassRepository creates a LiveClassRepository over db.
func NewLiveClassRepository(db *DB) *LiveClassRepository {
	return &LiveClassRepository{db: db}
}

func (r *LiveClassRepository) Create(_ context.Context, l *model.LiveClass) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.courses[l.CourseID]; !ok {
		return repository.ErrReferenced
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.ParticipantCount = 0
	l.CreatedAt = r.db.now()
	l.UpdatedAt = l.CreatedAt
	r.db.liveClasses[l.ID] = *l
	return nil
}

func (r *LiveClassRepository) GetByID(_ context.Context, id uuid.UUID) (*model.LiveClass, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	l, ok := r.db.liveClasses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r *LiveClassRepository) List(_ context.Context, f model.LiveClassFilter) ([]model.LiveClass, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	now := r.db.now()
	out := []model.LiveClass{}
	for _, l := range r.db.liveClasses {
		if f.CourseIDs != nil && !slices.Contains(f.CourseIDs, l.CourseID) {
			continue
		}
		if f.UpcomingOnly {
			end := l.ScheduledAt.Add(time.Duration(l.DurationMinutes) * time.Minute)
			if end.Before(now) || (l.Status != model.LiveClassStatusScheduled && l.Status != model.LiveClassStatusLive) {
				continue
			}
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *LiveClassRepository) Update(_ context.Context, l *model.LiveClass) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.liveClasses[l.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Title = l.Title
	existing.ScheduledAt = l.ScheduledAt
	existing.DurationMinutes = l.DurationMinutes
	existing.MeetingLink = l.MeetingLink
	existing.MaxParticipants = l.MaxParticipants
	existing.Status = l.Status
	existing.UpdatedAt = r.db.now()
	r.db.liveClasses[l.ID] = existing
	l.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *LiveClassRepository) Transition(_ context.Context, id uuid.UUID, from, to model.LiveClassStatus) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l, ok := r.db.liveClasses[id]
	if !ok || l.Status != from {
		return false, nil
	}
	l.Status = to
	l.UpdatedAt = r.db.now()
	r.db.liveClasses[id] = l
	return true, nil
}

func (r *LiveClassRepository) SetParticipantCount(_ context.Context, id uuid.UUID, count int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	l, ok := r.db.liveClasses[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.ParticipantCount = count
	r.db.liveClasses[id] = l
	return nil
}

func (r *LiveClassRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.liveClasses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.liveClasses, id)
	return nil
}
