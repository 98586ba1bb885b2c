package party

import (
	"context"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. It backs
// tests, the smoke CLI and local development without PostgreSQL.
type InMemory struct {
	mu   sync.RWMutex
	reg  *Registry
	rows map[string]map[int64]Record
	seq  int64
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty store over the given registry.
func NewInMemory(reg *Registry) *InMemory {
	return &InMemory{
		reg:  reg,
		rows: make(map[string]map[int64]Record),
	}
}

func (s *InMemory) List(ctx context.Context, d *Descriptor) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table := s.rows[d.Slug]
	out := make([]Record, 0, len(table))
	for _, rec := range table {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (s *InMemory) Get(ctx context.Context, d *Descriptor, id int64) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.rows[d.Slug][id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *InMemory) Create(ctx context.Context, d *Descriptor, rec Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.duplicateLocked(d, rec, 0) {
		return nil, ErrDuplicate
	}
	// Party subtypes draw from the shared supertype sequence; the in-memory
	// store uses one sequence for everything, which satisfies both.
	s.seq++
	stored := rec.Clone()
	stored["id"] = s.seq
	if s.rows[d.Slug] == nil {
		s.rows[d.Slug] = make(map[int64]Record)
	}
	s.rows[d.Slug][s.seq] = stored
	return stored.Clone(), nil
}

func (s *InMemory) Update(ctx context.Context, d *Descriptor, id int64, update Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.rows[d.Slug][id]
	if !ok {
		return nil, ErrNotFound
	}
	merged := d.Merge(current, update)
	if s.duplicateLocked(d, merged, id) {
		return nil, ErrDuplicate
	}
	s.rows[d.Slug][id] = merged
	return merged.Clone(), nil
}

func (s *InMemory) Delete(ctx context.Context, d *Descriptor, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[d.Slug][id]; !ok {
		return ErrNotFound
	}
	for _, dep := range d.Dependents {
		for _, rec := range s.rows[dep.Entity] {
			if rec.Int(dep.Column) == id {
				return ErrReferenced
			}
		}
	}
	delete(s.rows[d.Slug], id)
	return nil
}

func (s *InMemory) duplicateLocked(d *Descriptor, rec Record, excludeID int64) bool {
	if len(d.UniqueBy) == 0 {
		return false
	}
	for id, other := range s.rows[d.Slug] {
		if id == excludeID {
			continue
		}
		if d.MatchesUnique(rec, other) {
			return true
		}
	}
	return false
}
