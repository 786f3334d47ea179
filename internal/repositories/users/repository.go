// Package users declares the user-record repository contract and its
// Postgres, in-memory and read-only implementations.
package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/models"
)

// Field is a lookup column usable with GetByField.
type Field string

const (
	FieldID       Field = "id"
	FieldUsername Field = "username"
	FieldEmail    Field = "email"
)

// ParseField validates a field name coming from configuration.
func ParseField(name string) (Field, error) {
	switch f := Field(name); f {
	case FieldID, FieldUsername, FieldEmail:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown user field %q", common.ErrorInvalidArgument, name)
	}
}

// Repository persists user records. Properties are stored separately by
// properties.Repository; records returned here carry none.
type Repository interface {
	// Create inserts u. Duplicate id, username or email yields
	// common.ErrorUserExists.
	Create(ctx context.Context, u *models.User) (*models.User, error)
	// Update overwrites every mutable column of the record with u.ID.
	// The created timestamp is never changed.
	Update(ctx context.Context, u *models.User) error
	// Delete removes the record; deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// GetByID returns common.ErrorNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByField matches value exactly against the stored (lowercase)
	// column. Returns common.ErrorNotFound when absent.
	GetByField(ctx context.Context, field Field, value string) (*models.User, error)
	// List returns all records ordered by username.
	List(ctx context.Context) ([]*models.User, error)
}
