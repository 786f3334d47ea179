// Package repomanager vends repositories bound to a connection or a
// transaction and owns the storage lifecycle (migrations, close).
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophusers/internal/dbx"
	"github.com/dmitrijs2005/gophusers/internal/repositories/properties"
	"github.com/dmitrijs2005/gophusers/internal/repositories/users"
)

type RepositoryManager interface {
	// Conn is the non-transactional handle to pass to Users/Properties.
	Conn() dbx.DBTX
	// WithTx runs fn atomically; repositories built from tx see its writes.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Users(db dbx.DBTX) users.Repository
	Properties(db dbx.DBTX) properties.Repository
	RunMigrations(ctx context.Context) error
	Close() error
}
