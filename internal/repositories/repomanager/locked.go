package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophusers/internal/models"
	"github.com/dmitrijs2005/gophusers/internal/repositories/properties"
	"github.com/dmitrijs2005/gophusers/internal/repositories/users"
)

// lockedUsers guards the shared memory users repository with the
// manager's transaction lock.
type lockedUsers struct {
	mu   *sync.Mutex
	repo users.Repository
}

func (r *lockedUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.Create(ctx, u)
}

func (r *lockedUsers) Update(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.Update(ctx, u)
}

func (r *lockedUsers) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.Delete(ctx, id)
}

func (r *lockedUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.GetByID(ctx, id)
}

func (r *lockedUsers) GetByField(ctx context.Context, field users.Field, value string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.GetByField(ctx, field, value)
}

func (r *lockedUsers) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.List(ctx)
}

type lockedProperties struct {
	mu   *sync.Mutex
	repo properties.Repository
}

func (r *lockedProperties) Add(ctx context.Context, p *models.Property) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.Add(ctx, p)
}

func (r *lockedProperties) UpdateValue(ctx context.Context, id string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.UpdateValue(ctx, id, value)
}

func (r *lockedProperties) ListByUser(ctx context.Context, userID string) (models.PropertyList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.ListByUser(ctx, userID)
}

func (r *lockedProperties) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.Delete(ctx, id)
}

func (r *lockedProperties) DeleteByName(ctx context.Context, userID, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.DeleteByName(ctx, userID, name)
}

func (r *lockedProperties) DeleteByNameValue(ctx context.Context, userID, name, value string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.DeleteByNameValue(ctx, userID, name, value)
}

func (r *lockedProperties) DeleteAllByName(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.DeleteAllByName(ctx, name)
}

func (r *lockedProperties) DeleteAllByNameValue(ctx context.Context, name, value string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.DeleteAllByNameValue(ctx, name, value)
}

func (r *lockedProperties) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.DeleteByUser(ctx, userID)
}

func (r *lockedProperties) FindUserIDs(ctx context.Context, filters []models.PropertyFilter) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.FindUserIDs(ctx, filters)
}
