// Package properties persists per-user name/value pairs.
package properties

import (
	"context"

	"github.com/dmitrijs2005/gophusers/internal/models"
)

// Repository stores user properties. A user may hold several rows with the
// same name; ListByUser keeps insertion order.
type Repository interface {
	// Add inserts p and returns it with the assigned ID.
	Add(ctx context.Context, p *models.Property) (*models.Property, error)
	UpdateValue(ctx context.Context, id string, value string) error
	ListByUser(ctx context.Context, userID string) (models.PropertyList, error)
	// Delete removes one row by id; a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByName removes every row of one user with the given name.
	DeleteByName(ctx context.Context, userID, name string) (int64, error)
	DeleteByNameValue(ctx context.Context, userID, name, value string) (int64, error)
	// DeleteAllByName removes the name from every user.
	DeleteAllByName(ctx context.Context, name string) (int64, error)
	DeleteAllByNameValue(ctx context.Context, name, value string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) error

	// FindUserIDs returns ids of users holding every filter pair.
	// An empty filter set matches nobody.
	FindUserIDs(ctx context.Context, filters []models.PropertyFilter) ([]string, error)
}
