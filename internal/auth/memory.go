package auth

import (
	"context"
	"sync"
	"time"
)

// MemUserStore is an in-memory UserStore used for tests and local runs
// without a database.
type MemUserStore struct {
	mu      sync.Mutex
	seq     int64
	byID    map[int64]*User
	byEmail map[string]int64
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{
		byID:    make(map[int64]*User),
		byEmail: make(map[string]int64),
	}
}

func (s *MemUserStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return ErrConflict
	}
	s.seq++
	user.ID = s.seq
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	s.byID[user.ID] = &cp
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemUserStore) Find(_ context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *MemUserStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}
