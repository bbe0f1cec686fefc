package memory

import (
	"context"
	"sort"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository"
	"github.com/google/uuid"
)

// MessageRepository is the in-memory message store.
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a MessageRepository over db.
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(_ context.Context, m *model.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.profiles[m.RecipientID]; !ok {
		return repository.ErrReferenced
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = r.db.now()
	r.db.messages[m.ID] = *m
	return nil
}

func (r *MessageRepository) ListFor(_ context.Context, profileID uuid.UUID, limit, offset int) ([]model.Message, int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []model.Message{}
	for _, m := range r.db.messages {
		if m.SenderID == profileID || m.RecipientID == profileID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), len(out), nil
}

func (r *MessageRepository) MarkRead(_ context.Context, id, recipientID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	m, ok := r.db.messages[id]
	if !ok || m.RecipientID != recipientID {
		return repository.ErrNotFound
	}
	if m.ReadAt == nil {
		now := r.db.now()
		m.ReadAt = &now
		r.db.messages[id] = m
	}
	return nil
}

func (r *MessageRepository) CountUnread(_ context.Context, recipientID uuid.UUID) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	n := 0
	for _, m := range r.db.messages {
		if m.RecipientID == recipientID && m.ReadAt == nil {
			n++
		}
	}
	return n, nil
}
