package users

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/models"
)

// MemoryRepository keeps records in process memory. Used by tests and by
// userctl when no database is configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*models.User)}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return nil, common.ErrorUserExists
	}
	if r.conflicts(user) {
		return nil, common.ErrorUserExists
	}

	r.users[user.ID] = stored(user)
	return user, nil
}

func (r *MemoryRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if r.conflicts(user) {
		return common.ErrorUserExists
	}

	next := stored(user)
	next.Created = current.Created
	r.users[user.ID] = next
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Clone(), nil
}

func (r *MemoryRepository) GetByField(ctx context.Context, field Field, value string) (*models.User, error) {
	if _, err := ParseField(string(field)); err != nil {
		return nil, err
	}
	if field == FieldID {
		return r.GetByID(ctx, value)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if (field == FieldUsername && u.Username == value) || (field == FieldEmail && u.Email == value) {
			return u.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Snapshot copies the current state; Restore puts it back. Together they
// give the memory repository manager transaction rollback.
func (r *MemoryRepository) Snapshot() map[string]*models.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[string]*models.User, len(r.users))
	for id, u := range r.users {
		snap[id] = u.Clone()
	}
	return snap
}

func (r *MemoryRepository) Restore(snap map[string]*models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = snap
}

// conflicts reports a username or email clash with another record.
// Caller holds the lock.
func (r *MemoryRepository) conflicts(user *models.User) bool {
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username || (user.Email != "" && u.Email == user.Email) {
			return true
		}
	}
	return false
}

func stored(user *models.User) *models.User {
	c := user.Clone()
	c.Properties = nil
	c.PasswordDefinition = nil
	return c
}
