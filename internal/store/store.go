// Package store implements the in-memory entity store backing the CRM core:
// an optimistic local cache whose mutations apply synchronously and persist
// to the remote authoritative store asynchronously through a write-behind
// queue. Local reads always reflect the latest locally-applied mutation;
// remote failure never rolls a mutation back.
package store

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Entity is anything the store can cache.
type Entity interface {
	EntityID() uuid.UUID
}

// Store is a mutex-guarded cache of one entity type. It is owned by the
// application root and passed by reference; nothing here is package-global.
type Store[T Entity] struct {
	mu      sync.RWMutex
	items   map[uuid.UUID]T
	newer   func(a, b T) bool
	listSeq atomic.Uint64
	sync    *WriteBehind[T]
}

// New creates a store. newer orders listings (true when a sorts before b).
// sync may be nil, in which case mutations stay local (used by tests and by
// read-only projections).
func New[T Entity](newer func(a, b T) bool, sync *WriteBehind[T]) *Store[T] {
	return &Store[T]{
		items: make(map[uuid.UUID]T),
		newer: newer,
		sync:  sync,
	}
}

// Load replaces the cache contents wholesale. Used for startup warm-up and
// by the reconciliation pass; no write-behind ops are produced.
func (s *Store[T]) Load(items []T) {
	next := make(map[uuid.UUID]T, len(items))
	for _, item := range items {
		next[item.EntityID()] = item
	}

	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

// Get returns the cached entity by id.
func (s *Store[T]) Get(id uuid.UUID) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// Create inserts the entity into the cache immediately and enqueues the
// remote create. The caller assigns the id before calling.
func (s *Store[T]) Create(entity T) T {
	s.mu.Lock()
	s.items[entity.EntityID()] = entity
	s.mu.Unlock()

	if s.sync != nil {
		s.sync.Enqueue(Op[T]{Kind: OpCreate, ID: entity.EntityID(), Entity: entity})
	}
	return entity
}

// Update applies mutate to the cached entity and enqueues a remote update
// carrying only the changed fields in patch. An unknown id is a no-op
// reported as ok=false; callers treat it as success (idempotent). An empty
// patch mutates nothing locally or remotely.
func (s *Store[T]) Update(id uuid.UUID, mutate func(T) T, patch map[string]any) (T, bool) {
	var zero T

	s.mu.Lock()
	current, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return zero, false
	}
	if len(patch) == 0 {
		s.mu.Unlock()
		return current, true
	}
	updated := mutate(current)
	s.items[id] = updated
	s.mu.Unlock()

	if s.sync != nil {
		s.sync.Enqueue(Op[T]{Kind: OpUpdate, ID: id, Patch: patch})
	}
	return updated, true
}

// Delete removes the entity from the cache and enqueues the remote delete.
// Unknown ids are a no-op.
func (s *Store[T]) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	_, ok := s.items[id]
	if ok {
		delete(s.items, id)
	}
	s.mu.Unlock()

	if ok && s.sync != nil {
		s.sync.Enqueue(Op[T]{Kind: OpDelete, ID: id})
	}
	return ok
}

// List returns one page of entities matching filter plus the total match
// count. page is 1-based.
func (s *Store[T]) List(filter func(T) bool, page, pageSize int) ([]T, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	matched := s.Where(filter)
	total := len(matched)

	start := (page - 1) * pageSize
	if start >= total {
		return []T{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total
}

// Where returns all entities matching filter in listing order. A nil filter
// matches everything.
func (s *Store[T]) Where(filter func(T) bool) []T {
	s.mu.RLock()
	matched := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if filter == nil || filter(item) {
			matched = append(matched, item)
		}
	}
	s.mu.RUnlock()

	if s.newer != nil {
		sort.Slice(matched, func(i, j int) bool { return s.newer(matched[i], matched[j]) })
	}
	return matched
}

// Find returns the first entity matching pred, in listing order.
func (s *Store[T]) Find(pred func(T) bool) (T, bool) {
	matched := s.Where(pred)
	if len(matched) == 0 {
		var zero T
		return zero, false
	}
	return matched[0], true
}

// Len returns the number of cached entities.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// NextListSeq issues the next list-request sequence number. Rapid paginated
// navigation is not guaranteed to resolve in request order; responses carry
// this monotonically increasing tag so consumers can discard any response
// older than the latest request they dispatched.
func (s *Store[T]) NextListSeq() uint64 {
	return s.listSeq.Add(1)
}
