package users

import (
	"context"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/models"
)

// ReadOnly exposes an external user directory (for example a legacy LMS
// database) for lookups and credential checks while refusing every
// mutation with common.ErrorUnsupported.
type ReadOnly struct {
	Source Repository
}

func NewReadOnly(source Repository) *ReadOnly {
	return &ReadOnly{Source: source}
}

func (r *ReadOnly) Create(context.Context, *models.User) (*models.User, error) {
	return nil, common.ErrorUnsupported
}

func (r *ReadOnly) Update(context.Context, *models.User) error {
	return common.ErrorUnsupported
}

func (r *ReadOnly) Delete(context.Context, string) error {
	return common.ErrorUnsupported
}

func (r *ReadOnly) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.Source.GetByID(ctx, id)
}

func (r *ReadOnly) GetByField(ctx context.Context, field Field, value string) (*models.User, error) {
	return r.Source.GetByField(ctx, field, value)
}

func (r *ReadOnly) List(ctx context.Context) ([]*models.User, error) {
	return r.Source.List(ctx)
}
