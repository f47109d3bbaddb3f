package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore implements UserStore with in-memory storage.
// It enforces the same folded-username uniqueness as the users_username_ci index.
type InMemoryStore struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]*User
	byName map[string]uuid.UUID
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:  make(map[uuid.UUID]*User),
		byName: make(map[string]uuid.UUID),
	}
}

// ListUsers returns all users ordered by creation, without password hashes
func (s *InMemoryStore) ListUsers(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Public())
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Username < users[j].Username
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// GetUser retrieves a user by id
func (s *InMemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	return u.Clone(), nil
}

// FindUserByUsername looks a user up by the folded username
func (s *InMemoryStore) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byName[FoldUsername(username)]
	if !exists {
		return nil, ErrUserNotFound
	}
	return s.users[id].Clone(), nil
}

// CreateUser stores a new user
func (s *InMemoryStore) CreateUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := FoldUsername(user.Username)
	if _, taken := s.byName[key]; taken {
		return ErrDuplicateUsername
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	s.users[user.ID] = user.Clone()
	s.byName[key] = user.ID
	return nil
}

// SaveUser overwrites the stored user with the same id
func (s *InMemoryStore) SaveUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[user.ID]
	if !exists {
		return ErrUserNotFound
	}

	key := FoldUsername(user.Username)
	if owner, taken := s.byName[key]; taken && owner != user.ID {
		return ErrDuplicateUsername
	}

	delete(s.byName, FoldUsername(existing.Username))
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	s.users[user.ID] = user.Clone()
	s.byName[key] = user.ID
	return nil
}

// DeleteUser removes a user
func (s *InMemoryStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return ErrUserNotFound
	}

	delete(s.byName, FoldUsername(u.Username))
	delete(s.users, id)
	return nil
}
