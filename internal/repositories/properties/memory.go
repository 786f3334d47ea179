package properties

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/models"
)

// MemoryRepository keeps rows in insertion order with a sequential id,
// mirroring the BIGSERIAL column of the Postgres table.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows []models.Property
	next int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Add(_ context.Context, p *models.Property) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	p.ID = strconv.FormatInt(r.next, 10)
	r.rows = append(r.rows, *p)
	return p, nil
}

func (r *MemoryRepository) UpdateValue(_ context.Context, id string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].Value = value
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) (models.PropertyList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out models.PropertyList
	for _, p := range r.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.deleteWhere(func(p models.Property) bool { return p.ID == id })
	return nil
}

func (r *MemoryRepository) DeleteByName(_ context.Context, userID, name string) (int64, error) {
	return r.deleteWhere(func(p models.Property) bool {
		return p.UserID == userID && p.Name == name
	}), nil
}

func (r *MemoryRepository) DeleteByNameValue(_ context.Context, userID, name, value string) (int64, error) {
	return r.deleteWhere(func(p models.Property) bool {
		return p.UserID == userID && p.Name == name && p.Value == value
	}), nil
}

func (r *MemoryRepository) DeleteAllByName(_ context.Context, name string) (int64, error) {
	return r.deleteWhere(func(p models.Property) bool { return p.Name == name }), nil
}

func (r *MemoryRepository) DeleteAllByNameValue(_ context.Context, name, value string) (int64, error) {
	return r.deleteWhere(func(p models.Property) bool {
		return p.Name == name && p.Value == value
	}), nil
}

func (r *MemoryRepository) DeleteByUser(_ context.Context, userID string) error {
	r.deleteWhere(func(p models.Property) bool { return p.UserID == userID })
	return nil
}

func (r *MemoryRepository) FindUserIDs(_ context.Context, filters []models.PropertyFilter) ([]string, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	type pair struct{ name, value string }
	held := make(map[string]map[pair]struct{})
	for _, p := range r.rows {
		if held[p.UserID] == nil {
			held[p.UserID] = make(map[pair]struct{})
		}
		held[p.UserID][pair{p.Name, p.Value}] = struct{}{}
	}

	var ids []string
	for userID, pairs := range held {
		match := true
		for _, f := range filters {
			if _, ok := pairs[pair{f.Name, f.Value}]; !ok {
				match = false
				break
			}
		}
		if match {
			ids = append(ids, userID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Snapshot and Restore back the memory manager's transaction rollback.
func (r *MemoryRepository) Snapshot() []models.Property {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Property(nil), r.rows...)
}

func (r *MemoryRepository) Restore(rows []models.Property) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = rows
}

func (r *MemoryRepository) deleteWhere(match func(models.Property) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.rows[:0]
	var n int64
	for _, p := range r.rows {
		if match(p) {
			n++
			continue
		}
		kept = append(kept, p)
	}
	r.rows = kept
	return n
}
