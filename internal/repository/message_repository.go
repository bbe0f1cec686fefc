package repository

import (
	"context"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository handles direct message data access.
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Create stores a message.
func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	return translate(r.pool.QueryRow(ctx,
		`INSERT INTO messages (sender_id, recipient_id, subject, body)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		m.SenderID, m.RecipientID, m.Subject, m.Body,
	).Scan(&m.ID, &m.CreatedAt))
}

// ListFor returns messages sent or received by the profile, newest first.
func (r *MessageRepository) ListFor(ctx context.Context, profileID uuid.UUID, limit, offset int) ([]model.Message, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE sender_id = $1 OR recipient_id = $1`, profileID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, sender_id, recipient_id, subject, body, read_at, created_at
		 FROM messages WHERE sender_id = $1 OR recipient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		profileID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Subject, &m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

// MarkRead stamps read_at on a message addressed to recipientID.
func (r *MessageRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) error {
	return expectOne(r.pool.Exec(ctx,
		`UPDATE messages SET read_at = COALESCE(read_at, CURRENT_TIMESTAMP)
		 WHERE id = $1 AND recipient_id = $2`, id, recipientID))
}

// CountUnread returns the number of unread messages for a recipient.
func (r *MessageRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND read_at IS NULL`, recipientID).Scan(&n)
	return n, err
}
