package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	authcore "github.com/gimanaid/authcore"
)

// Store is an in-memory [authcore.UserStore] for tests and examples.
// Every read returns a deep copy, so callers can mutate the returned user
// freely and persist with UpdateUser, matching how a database-backed
// implementation behaves.
type Store struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*authcore.User
	byName map[string]uuid.UUID
}

// NewStore creates an empty [Store].
func NewStore() *Store {
	return &Store{
		byID:   make(map[uuid.UUID]*authcore.User),
		byName: make(map[string]uuid.UUID),
	}
}

// GetUser returns a copy of the user with the given ID.
func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*authcore.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", authcore.ErrUserNotFound, id)
	}
	return cloneUser(user), nil
}

// GetUserByUsername returns a copy of the user with the given username.
func (s *Store) GetUserByUsername(_ context.Context, username string) (*authcore.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", authcore.ErrUserNotFound, username)
	}
	return cloneUser(s.byID[id]), nil
}

// CreateUser inserts a new user. Duplicate usernames are rejected.
func (s *Store) CreateUser(_ context.Context, user *authcore.User) error {
	if user == nil || user.ID == uuid.Nil {
		return authcore.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[user.Username]; exists {
		return fmt.Errorf("%w: %s", authcore.ErrUsernameTaken, user.Username)
	}
	if _, exists := s.byID[user.ID]; exists {
		return fmt.Errorf("user id already exists: %s", user.ID)
	}

	s.byID[user.ID] = cloneUser(user)
	s.byName[user.Username] = user.ID
	return nil
}

// UpdateUser replaces the stored user. Renames rekey the username index.
func (s *Store) UpdateUser(_ context.Context, user *authcore.User) error {
	if user == nil || user.ID == uuid.Nil {
		return authcore.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[user.ID]
	if !ok {
		return fmt.Errorf("%w: %s", authcore.ErrUserNotFound, user.ID)
	}

	if existing.Username != user.Username {
		if _, taken := s.byName[user.Username]; taken {
			return fmt.Errorf("%w: %s", authcore.ErrUsernameTaken, user.Username)
		}
		delete(s.byName, existing.Username)
		s.byName[user.Username] = user.ID
	}

	s.byID[user.ID] = cloneUser(user)
	return nil
}

// DeleteUser removes the user. Deleting an absent user yields
// [authcore.ErrUserNotFound].
func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", authcore.ErrUserNotFound, id)
	}

	delete(s.byName, user.Username)
	delete(s.byID, id)
	return nil
}

// Len returns the number of stored users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func cloneUser(u *authcore.User) *authcore.User {
	out := *u

	if u.Privileges != nil {
		out.Privileges = append([]string(nil), u.Privileges...)
	}
	if u.Email.VerificationToken != nil {
		token := *u.Email.VerificationToken
		out.Email.VerificationToken = &token
	}
	if u.Credential.ResetToken != nil {
		token := *u.Credential.ResetToken
		out.Credential.ResetToken = &token
	}

	return &out
}
