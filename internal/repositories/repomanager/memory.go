package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophusers/internal/dbx"
	"github.com/dmitrijs2005/gophusers/internal/repositories/properties"
	"github.com/dmitrijs2005/gophusers/internal/repositories/users"
)

// MemoryRepositoryManager shares one pair of in-memory repositories for
// every handle. A transaction holds mu for its whole run and a failing fn
// restores the state captured before it ran. Repositories vended for
// Conn() take mu per call, so they neither see uncommitted writes nor
// interleave with an open transaction.
type MemoryRepositoryManager struct {
	mu    sync.Mutex
	users *users.MemoryRepository
	props *properties.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users: users.NewMemoryRepository(),
		props: properties.NewMemoryRepository(),
	}
}

// memoryTx marks repositories vended inside WithTx. Memory repositories
// never call its methods.
type memoryTx struct {
	dbx.DBTX
}

// Conn returns nil; memory repositories ignore the handle.
func (m *MemoryRepositoryManager) Conn() dbx.DBTX {
	return nil
}

func isMemoryTx(db dbx.DBTX) bool {
	_, ok := db.(memoryTx)
	return ok
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	userSnap := m.users.Snapshot()
	propSnap := m.props.Snapshot()

	defer func() {
		if p := recover(); p != nil {
			m.users.Restore(userSnap)
			m.props.Restore(propSnap)
			panic(p)
		}
		if err != nil {
			m.users.Restore(userSnap)
			m.props.Restore(propSnap)
		}
	}()

	return fn(ctx, memoryTx{})
}

func (m *MemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	if isMemoryTx(db) {
		return m.users
	}
	return &lockedUsers{mu: &m.mu, repo: m.users}
}

func (m *MemoryRepositoryManager) Properties(db dbx.DBTX) properties.Repository {
	if isMemoryTx(db) {
		return m.props
	}
	return &lockedProperties{mu: &m.mu, repo: m.props}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
