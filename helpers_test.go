package authcore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

// testConfig uses light argon2 parameters so credential-heavy tests stay
// fast.
func testConfig() Config {
	cfg := defaultConfig()
	cfg.Password = PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}
	return cfg
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockUserStore is the in-package equivalent of the memstore package,
// which tests here cannot import without a cycle.
type mockUserStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*User
	byName map[string]uuid.UUID
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		byID:   make(map[uuid.UUID]*User),
		byName: make(map[string]uuid.UUID),
	}
}

func (s *mockUserStore) GetUser(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return cloneTestUser(user), nil
}

func (s *mockUserStore) GetUserByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}
	return cloneTestUser(s.byID[id]), nil
}

func (s *mockUserStore) CreateUser(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[user.Username]; exists {
		return fmt.Errorf("%w: %s", ErrUsernameTaken, user.Username)
	}
	s.byID[user.ID] = cloneTestUser(user)
	s.byName[user.Username] = user.ID
	return nil
}

func (s *mockUserStore) UpdateUser(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[user.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, user.ID)
	}
	if existing.Username != user.Username {
		delete(s.byName, existing.Username)
		s.byName[user.Username] = user.ID
	}
	s.byID[user.ID] = cloneTestUser(user)
	return nil
}

func (s *mockUserStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	delete(s.byName, user.Username)
	delete(s.byID, id)
	return nil
}

func cloneTestUser(u *User) *User {
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

// recordingEmailSender captures sent messages; fail makes every send
// error.
type recordingEmailSender struct {
	mu   sync.Mutex
	sent []sentEmail
	fail bool
}

type sentEmail struct {
	Recipient string
	Subject   string
	Body      string
}

func (s *recordingEmailSender) Send(recipient, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("smtp unavailable")
	}
	s.sent = append(s.sent, sentEmail{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

func (s *recordingEmailSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type testEnv struct {
	engine *Engine
	users  *mockUserStore
	clock  *fakeClock
	email  *recordingEmailSender
}

func newTestEngine(t *testing.T) *testEnv {
	t.Helper()

	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	users := newMockUserStore()
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	email := &recordingEmailSender{}

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserStore(users).
		WithClock(clock).
		WithEmailSender(email).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEnv{
		engine: engine,
		users:  users,
		clock:  clock,
		email:  email,
	}
}

func mustCreateAccount(t *testing.T, env *testEnv, username string) *User {
	t.Helper()

	user, err := env.engine.CreateAccount(context.Background(), username, username+"@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("CreateAccount(%q) failed: %v", username, err)
	}
	return user
}
