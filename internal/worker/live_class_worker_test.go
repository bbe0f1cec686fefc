package worker

import (
	"context"
	"testing"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type stubStore struct {
	classes []model.LiveClass
	updates map[uuid.UUID]model.LiveClassStatus
}

func (s *stubStore) List(_ context.Context, _ model.LiveClassFilter) ([]model.LiveClass, int, error) {
	out := append([]model.LiveClass(nil), s.classes...)
	return out, len(out), nil
}

func (s *stubStore) Transition(_ context.Context, id uuid.UUID, _, to model.LiveClassStatus) (bool, error) {
	s.updates[id] = to
	return true, nil
}

// cancelAfterList cancels a class between the sweep's List and its write.
type cancelAfterList struct {
	*memory.LiveClassRepository
	id uuid.UUID
}

func (s *cancelAfterList) List(ctx context.Context, f model.LiveClassFilter) ([]model.LiveClass, int, error) {
	classes, total, err := s.LiveClassRepository.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	l, err := s.GetByID(ctx, s.id)
	if err != nil {
		return nil, 0, err
	}
	l.Status = model.LiveClassStatusCancelled
	l.Title = "Cancelada por el docente"
	if err := s.Update(ctx, l); err != nil {
		return nil, 0, err
	}
	return classes, total, nil
}

func TestNextStatus(t *testing.T) {
	start := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status model.LiveClassStatus
		now    time.Time
		want   model.LiveClassStatus
		change bool
	}{
		{"before start", model.LiveClassStatusScheduled, start.Add(-time.Minute), "", false},
		{"at start", model.LiveClassStatusScheduled, start, model.LiveClassStatusLive, true},
		{"already live", model.LiveClassStatusLive, start.Add(30 * time.Minute), "", false},
		{"scheduled past end", model.LiveClassStatusScheduled, start.Add(2 * time.Hour), model.LiveClassStatusFinished, true},
		{"live at end", model.LiveClassStatusLive, start.Add(time.Hour), model.LiveClassStatusFinished, true},
		{"cancelled", model.LiveClassStatusCancelled, start.Add(2 * time.Hour), "", false},
		{"finished", model.LiveClassStatusFinished, start.Add(2 * time.Hour), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &model.LiveClass{Status: tt.status, ScheduledAt: start, DurationMinutes: 60}
			got, ok := nextStatus(l, tt.now)
			if ok != tt.change || got != tt.want {
				t.Fatalf("nextStatus = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.change)
			}
		})
	}
}

func TestSweepUpdatesDueClasses(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 30, 0, 0, time.UTC)
	starting := uuid.New()
	ending := uuid.New()
	future := uuid.New()

	store := &stubStore{
		classes: []model.LiveClass{
			{ID: starting, Status: model.LiveClassStatusScheduled, ScheduledAt: now.Add(-10 * time.Minute), DurationMinutes: 60},
			{ID: ending, Status: model.LiveClassStatusLive, ScheduledAt: now.Add(-2 * time.Hour), DurationMinutes: 90},
			{ID: future, Status: model.LiveClassStatusScheduled, ScheduledAt: now.Add(time.Hour), DurationMinutes: 60},
		},
		updates: make(map[uuid.UUID]model.LiveClassStatus),
	}

	w := NewLiveClassWorker(store, zerolog.Nop())
	w.now = func() time.Time { return now }

	changed, err := w.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if changed != 2 {
		t.Fatalf("changed = %d, want 2", changed)
	}
	if store.updates[starting] != model.LiveClassStatusLive {
		t.Fatalf("starting class = %q, want live", store.updates[starting])
	}
	if store.updates[ending] != model.LiveClassStatusFinished {
		t.Fatalf("ending class = %q, want finished", store.updates[ending])
	}
	if _, ok := store.updates[future]; ok {
		t.Fatalf("future class should not change")
	}
}

func TestSweepKeepsConcurrentCancellation(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	if err := memory.Seed(db, bcrypt.MinCost); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := memory.NewLiveClassRepository(db)
	seeded, err := repo.GetByID(ctx, memory.FixtureLiveClassID)
	if err != nil {
		t.Fatalf("get fixture: %v", err)
	}

	w := NewLiveClassWorker(&cancelAfterList{LiveClassRepository: repo, id: seeded.ID}, zerolog.Nop())
	w.now = func() time.Time { return seeded.ScheduledAt.Add(time.Minute) }

	changed, err := w.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if changed != 0 {
		t.Fatalf("changed = %d, want 0", changed)
	}

	got, err := repo.GetByID(ctx, seeded.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.LiveClassStatusCancelled {
		t.Fatalf("status = %q, want cancelled", got.Status)
	}
	if got.Title != "Cancelada por el docente" {
		t.Fatalf("title = %q, edit was overwritten", got.Title)
	}
}

func TestSweepAgainstMemoryStore(t *testing.T) {
	ctx := context.Background()
	db := memory.NewDB()
	if err := memory.Seed(db, bcrypt.MinCost); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := memory.NewLiveClassRepository(db)
	seeded, err := repo.GetByID(ctx, memory.FixtureLiveClassID)
	if err != nil {
		t.Fatal(err)
	}

	w := NewLiveClassWorker(repo, zerolog.Nop())
	w.now = func() time.Time { return seeded.ScheduledAt.Add(time.Minute) }
	if _, err := w.Sweep(ctx); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	got, _ := repo.GetByID(ctx, seeded.ID)
	if got.Status != model.LiveClassStatusLive {
		t.Fatalf("status = %q, want live", got.Status)
	}
	if got.Title != seeded.Title || got.MaxParticipants != seeded.MaxParticipants {
		t.Fatalf("transition changed more than the status: %+v", got)
	}
}
