package worker

import (
	"context"
	"time"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LiveClassSweepInterval is how often live class statuses are reconciled
// with the clock.
const LiveClassSweepInterval = time.Minute

// LiveClassStore is the subset of the live class store the worker needs.
type LiveClassStore interface {
	List(ctx context.Context, f model.LiveClassFilter) ([]model.LiveClass, int, error)
	Transition(ctx context.Context, id uuid.UUID, from, to model.LiveClassStatus) (bool, error)
}

// LiveClassWorker moves scheduled live classes to live once they start and
// to finished once their duration has elapsed. Cancelled and finished
// classes are never touched.
type LiveClassWorker struct {
	store    LiveClassStore
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewLiveClassWorker(store LiveClassStore, log zerolog.Logger) *LiveClassWorker {
	return &LiveClassWorker{
		store:    store,
		interval: LiveClassSweepInterval,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("component", "live_class_worker").Logger(),
	}
}

// Start sweeps immediately and then on every tick until ctx is done.
func (w *LiveClassWorker) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("LiveClassWorker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if _, err := w.Sweep(ctx); err != nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Live class sweep failed")
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("LiveClassWorker stopped")
			return
		case <-ticker.C:
		}
	}
}

// Sweep applies due transitions and returns how many classes changed. Each
// transition only applies while the class still has the status it was
// listed with, so concurrent edits win over the sweep.
func (w *LiveClassWorker) Sweep(ctx context.Context) (int, error) {
	classes, _, err := w.store.List(ctx, model.LiveClassFilter{})
	if err != nil {
		return 0, err
	}

	now := w.now()
	changed := 0
	for i := range classes {
		l := &classes[i]
		next, ok := nextStatus(l, now)
		if !ok {
			continue
		}

		applied, err := w.store.Transition(ctx, l.ID, l.Status, next)
		if err != nil {
			w.log.Warn().Err(err).Str("live_class_id", l.ID.String()).Msg("Failed to update live class status")
			continue
		}
		if !applied {
			continue
		}
		changed++
		w.log.Debug().
			Str("live_class_id", l.ID.String()).
			Str("from", string(l.Status)).
			Str("to", string(next)).
			Msg("Live class status changed")
	}
	return changed, nil
}

func nextStatus(l *model.LiveClass, now time.Time) (model.LiveClassStatus, bool) {
	if l.Status != model.LiveClassStatusScheduled && l.Status != model.LiveClassStatusLive {
		return "", false
	}

	end := l.ScheduledAt.Add(time.Duration(l.DurationMinutes) * time.Minute)
	switch {
	case !now.Before(end):
		return model.LiveClassStatusFinished, true
	case l.Status == model.LiveClassStatusScheduled && !now.Before(l.ScheduledAt):
		return model.LiveClassStatusLive, true
	}
	return "", false
}
