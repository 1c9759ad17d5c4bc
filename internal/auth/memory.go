package auth

import (
	"context"
	"sync"
	"time"

	"salesreport/internal/core"
)

// MemoryUserStore keeps users in a map. Used by the memory backend and tests.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[string]core.User
	nextID int64
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]core.User)}
}

func (m *MemoryUserStore) CreateUser(_ context.Context, u core.User) (core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return core.User{}, core.ErrDuplicateUser
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	m.users[u.Username] = u
	return u, nil
}

func (m *MemoryUserStore) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}
