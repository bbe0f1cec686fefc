// Package websocket tracks live-class presence: one room per live class,
// one participant per connection.
package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var ErrRoomFull = errors.New("live class is at capacity")

// CountStore persists the participant count of a live class.
type CountStore interface {
	SetParticipantCount(ctx context.Context, id uuid.UUID, count int) error
}

// Hub is the process-wide registry of presence rooms.
type Hub struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*room
	store CountStore
	log   zerolog.Logger
}

type room struct {
	mu      sync.Mutex
	id      uuid.UUID
	max     int
	members map[*Member]struct{}
}

// Member is one connection inside a room.
type Member struct {
	room   *room
	conn   *websocket.Conn
	userID uuid.UUID

	writeMu sync.Mutex
}

// NewHub creates an empty Hub.
func NewHub(store CountStore, log zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[uuid.UUID]*room),
		store: store,
		log:   log.With().Str("component", "presence_hub").Logger(),
	}
}

// Count returns the number of connections in a live class.
func (h *Hub) Count(liveClassID uuid.UUID) int {
	h.mu.Lock()
	r, ok := h.rooms[liveClassID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Join adds conn to the room of a live class, persists and broadcasts the
// new count. It returns ErrRoomFull when capacity connections are already
// present; a capacity of zero means unlimited.
func (h *Hub) Join(liveClassID uuid.UUID, capacity int, userID uuid.UUID, conn *websocket.Conn) (*Member, error) {
	r := h.lockRoom(liveClassID)
	defer r.mu.Unlock()
	r.max = capacity

	if capacity > 0 && len(r.members) >= capacity {
		h.dropIfEmpty(r)
		return nil, ErrRoomFull
	}

	m := &Member{room: r, conn: conn, userID: userID}
	r.members[m] = struct{}{}
	h.publish(r)
	return m, nil
}

// lockRoom returns the registered room for id with its mutex held, creating
// it when needed. A room dropped between lookup and lock is retried.
func (h *Hub) lockRoom(id uuid.UUID) *room {
	for {
		h.mu.Lock()
		r, ok := h.rooms[id]
		if !ok {
			r = &room{id: id, members: make(map[*Member]struct{})}
			h.rooms[id] = r
		}
		h.mu.Unlock()

		r.mu.Lock()
		h.mu.Lock()
		current := h.rooms[id] == r
		h.mu.Unlock()
		if current {
			return r
		}
		r.mu.Unlock()
	}
}

// Leave removes m from its room. Calling it twice is harmless.
func (h *Hub) Leave(m *Member) {
	r := m.room
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[m]; !ok {
		return
	}
	delete(r.members, m)
	h.publish(r)
	h.dropIfEmpty(r)
}

// Send writes v to the member's connection.
func (m *Member) Send(v interface{}) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return WriteTyped(m.conn, v)
}

// publish persists and broadcasts the room count. Callers hold r.mu.
func (h *Hub) publish(r *room) {
	count := len(r.members)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.store.SetParticipantCount(ctx, r.id, count); err != nil {
		h.log.Error().Err(err).Str("live_class_id", r.id.String()).Msg("Persist participant count failed")
	}

	event := ParticipantsEvent{
		Event:       EventParticipants,
		LiveClassID: r.id.String(),
		Count:       count,
		Max:         r.max,
	}
	for m := range r.members {
		if err := m.Send(event); err != nil {
			h.log.Debug().Err(err).Str("user_id", m.userID.String()).Msg("Broadcast write failed")
		}
	}
}

// dropIfEmpty forgets an empty room. Callers hold r.mu.
func (h *Hub) dropIfEmpty(r *room) {
	if len(r.members) > 0 {
		return
	}
	h.mu.Lock()
	if h.rooms[r.id] == r {
		delete(h.rooms, r.id)
	}
	h.mu.Unlock()
}
