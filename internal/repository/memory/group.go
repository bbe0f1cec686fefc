package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/epsilon-academy/academy-backend/internal/model"
	"github.com/epsilon-academy/academy-backend/internal/repository"
	"github.com/google/uuid"
)

// GroupRepository is the in-memory group store.
type GroupRepository struct {
	db *DB
}

// NewGroupRepository creates a GroupRepository over db.
func NewGroupRepository(db *DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func cloneGroup(g model.Group) model.Group {
	g.MemberIDs = append([]uuid.UUID{}, g.MemberIDs...)
	return g
}

func (r *GroupRepository) Create(_ context.Context, g *model.Group) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.profiles[g.CreatedBy]; !ok {
		return repository.ErrReferenced
	}
	members := []uuid.UUID{}
	for _, id := range g.MemberIDs {
		if _, ok := r.db.profiles[id]; !ok {
			return repository.ErrReferenced
		}
		if !slices.Contains(members, id) {
			members = append(members, id)
		}
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	g.MemberIDs = members
	g.CreatedAt = r.db.now()
	r.db.groups[g.ID] = cloneGroup(*g)
	return nil
}

func (r *GroupRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Group, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	g, ok := r.db.groups[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	g = cloneGroup(g)
	return &g, nil
}

func (r *GroupRepository) List(_ context.Context, memberID *uuid.UUID) ([]model.Group, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []model.Group{}
	for _, g := range r.db.groups {
		if memberID != nil && !slices.Contains(g.MemberIDs, *memberID) {
			continue
		}
		out = append(out, cloneGroup(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *GroupRepository) AddMember(_ context.Context, groupID, studentID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	g, ok := r.db.groups[groupID]
	if !ok {
		return repository.ErrReferenced
	}
	if _, ok := r.db.profiles[studentID]; !ok {
		return repository.ErrReferenced
	}
	if slices.Contains(g.MemberIDs, studentID) {
		return repository.ErrDuplicate
	}
	g.MemberIDs = append(g.MemberIDs, studentID)
	r.db.groups[groupID] = g
	return nil
}

func (r *GroupRepository) RemoveMember(_ context.Context, groupID, studentID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	g, ok := r.db.groups[groupID]
	if !ok {
		return repository.ErrNotFound
	}
	i := slices.Index(g.MemberIDs, studentID)
	if i < 0 {
		return repository.ErrNotFound
	}
	g.MemberIDs = slices.Delete(g.MemberIDs, i, i+1)
	r.db.groups[groupID] = g
	return nil
}

func (r *GroupRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.groups[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.db.groups, id)
	for rid, e := range r.db.evaluations {
		if e.GroupID != nil && *e.GroupID == id {
			e.GroupID = nil
			r.db.evaluations[rid] = e
		}
	}
	return nil
}
