package repomanager

import (
	"github.com/dmitrijs2005/gophusers/internal/dbx"
	"github.com/dmitrijs2005/gophusers/internal/repositories/users"
)

// ReadOnlyUsersManager serves users from an external directory owned by
// another system. User mutations fail with common.ErrorUnsupported;
// properties are stored as usual.
type ReadOnlyUsersManager struct {
	RepositoryManager
}

func NewReadOnlyUsersManager(m RepositoryManager) *ReadOnlyUsersManager {
	return &ReadOnlyUsersManager{RepositoryManager: m}
}

func (m *ReadOnlyUsersManager) Users(db dbx.DBTX) users.Repository {
	return users.NewReadOnly(m.RepositoryManager.Users(db))
}
