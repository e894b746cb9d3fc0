package authcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueAndResolveToken(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()

	user := mustCreateAccount(t, env, "alice")

	token, err := env.engine.IssueToken(ctx, user.ID, false)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if len(token.Token) != env.engine.config.Session.TokenLength {
		t.Fatalf("token length = %d, want %d", len(token.Token), env.engine.config.Session.TokenLength)
	}

	resolved, record, err := env.engine.ResolveToken(ctx, token.Token)
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("resolved user = %s, want %s", resolved.ID, user.ID)
	}
	if record.Remembered {
		t.Fatal("plain token marked remembered")
	}

	wantExpiry := env.clock.Now().Add(env.engine.config.Session.SessionTTL).Unix()
	if record.ExpiresAt != wantExpiry {
		t.Fatalf("expiry = %d, want %d", record.ExpiresAt, wantExpiry)
	}
}

func TestResolveTokenUnknown(t *testing.T) {
	env := newTestEngine(t)

	_, _, err := env.engine.ResolveToken(context.Background(), "nosuchtokennosuchtokennosuchtoke")
	if !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("err = %v, want ErrTokenNotFound", err)
	}
}

func TestResolveTokenExpired(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()

	user := mustCreateAccount(t, env, "alice")

	token, err := env.engine.IssueToken(ctx, user.ID, false)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	env.clock.Advance(env.engine.config.Session.SessionTTL + time.Second)

	if _, _, err := env.engine.ResolveToken(ctx, token.Token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}

	// The expired record is gone; a second resolve misses entirely.
	if _, _, err := env.engine.ResolveToken(ctx, token.Token); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("second resolve err = %v, want ErrTokenNotFound", err)
	}
}

func TestResolveTokenAtExactExpiryIsValid(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()

	user := mustCreateAccount(t, env, "alice")

	token, err := env.engine.IssueToken(ctx, user.ID, false)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	env.clock.Advance(env.engine.config.Session.SessionTTL)

	if _, _, err := env.engine.ResolveToken(ctx, token.Token); err != nil {
		t.Fatalf("resolve exactly at expiry failed: %v", err)
	}
}

func TestRememberedTokenSlidesExpiry(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()

	user := mustCreateAccount(t, env, "alice")

	token, err := env.engine.IssueToken(ctx, user.ID, true)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	// 29 days in, the token is still alive; resolving re-extends it to a
	// further 30 days from this instant.
	env.clock.Advance(29 * 24 * time.Hour)

	_, record, err := env.engine.ResolveToken(ctx, token.Token)
	if err != nil {
		t.Fatalf("resolve at day 29 failed: %v", err)
	}
	wantExpiry := env.clock.Now().Add(env.engine.config.Session.RememberedTTL).Unix()
	if record.ExpiresAt != wantExpiry {
		t.Fatalf("extended expiry = %d, want %d", record.ExpiresAt, wantExpiry)
	}

	// Another 29 days of silence stays within the slid window.
	env.clock.Advance(29 * 24 * time.Hour)
	if _, _, err := env.engine.ResolveToken(ctx, token.Token); err != nil {
		t.Fatalf("resolve at day 58 failed: %v", err)
	}

	// 31 days of silence overshoots the window.
	env.clock.Advance(31 * 24 * time.Hour)
	if _, _, err := env.engine.ResolveToken(ctx, token.Token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestPlainTokenDoesNotSlide(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()

	user := mustCreateAccount(t, env, "alice")

	token, err := env.engine.IssueToken(ctx, user.ID, false)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	issuedExpiry := token.ExpiresAt

	env.clock.Advance(time.Hour)

	_, record, err := env.engine.ResolveToken(ctx, token.Token)
	if err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}
	if record.ExpiresAt != issuedExpiry {
		t.Fatalf("plain token expiry moved from %d to %d", issuedExpiry, record.ExpiresAt)
	}
}

func TestRevokeToken(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()

	user := mustCreateAccount(t, env, "alice")

	token, err := env.engine.IssueToken(ctx, user.ID, false)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if err := env.engine.RevokeToken(ctx, token.Token); err != nil {
		t.Fatalf("RevokeToken failed: %v", err)
	}
	if _, _, err := env.engine.ResolveToken(ctx, token.Token); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("err = %v, want ErrTokenNotFound", err)
	}

	// Revoking again is a no-op.
	if err := env.engine.RevokeToken(ctx, token.Token); err != nil {
		t.Fatalf("second RevokeToken failed: %v", err)
	}
}

func TestRevokeAllTokens(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()

	alice := mustCreateAccount(t, env, "alice")
	bob := mustCreateAccount(t, env, "bob")

	var aliceTokens []string
	for i := 0; i < 3; i++ {
		token, err := env.engine.IssueToken(ctx, alice.ID, i == 0)
		if err != nil {
			t.Fatalf("IssueToken failed: %v", err)
		}
		aliceTokens = append(aliceTokens, token.Token)
	}
	bobToken, err := env.engine.IssueToken(ctx, bob.ID, false)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if err := env.engine.RevokeAllTokens(ctx, alice.ID); err != nil {
		t.Fatalf("RevokeAllTokens failed: %v", err)
	}

	for _, token := range aliceTokens {
		if _, _, err := env.engine.ResolveToken(ctx, token); !errors.Is(err, ErrTokenNotFound) {
			t.Fatalf("alice token survived revoke-all: %v", err)
		}
	}
	if _, _, err := env.engine.ResolveToken(ctx, bobToken.Token); err != nil {
		t.Fatalf("bob token died with alice's revoke-all: %v", err)
	}
}

func TestActiveTokens(t *testing.T) {
	env := newTestEngine(t)
	ctx := context.Background()

	user := mustCreateAccount(t, env, "alice")

	if _, err := env.engine.IssueToken(ctx, user.ID, false); err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := env.engine.IssueToken(ctx, user.ID, true); err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	tokens, err := env.engine.ActiveTokens(ctx, user.ID)
	if err != nil {
		t.Fatalf("ActiveTokens failed: %v", err)
	}
	if len(tokens) != 2 {
		t.Fatalf("active tokens = %d, want 2", len(tokens))
	}

	// Past the plain TTL only the remembered token remains.
	env.clock.Advance(env.engine.config.Session.SessionTTL + time.Second)

	tokens, err = env.engine.ActiveTokens(ctx, user.ID)
	if err != nil {
		t.Fatalf("ActiveTokens failed: %v", err)
	}
	if len(tokens) != 1 || !tokens[0].Remembered {
		t.Fatalf("active tokens after plain TTL = %+v, want the remembered one", tokens)
	}
}

func TestExtendExpiryForwardOnly(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ttl := 30 * 24 * time.Hour

	current := base.Add(ttl)

	// An earlier instant cannot shrink the window.
	if got := extendExpiry(current, base.Add(-time.Hour), ttl); !got.Equal(current) {
		t.Fatalf("extendExpiry moved expiry backward to %v", got)
	}

	// A later instant moves it forward.
	later := base.Add(48 * time.Hour)
	if got := extendExpiry(current, later, ttl); !got.Equal(later.Add(ttl)) {
		t.Fatalf("extendExpiry = %v, want %v", got, later.Add(ttl))
	}

	// Commutative: applying two instants in either order converges.
	a, b := base.Add(time.Hour), base.Add(2*time.Hour)
	ab := extendExpiry(extendExpiry(current, a, ttl), b, ttl)
	ba := extendExpiry(extendExpiry(current, b, ttl), a, ttl)
	if !ab.Equal(ba) {
		t.Fatalf("extendExpiry order-dependent: %v vs %v", ab, ba)
	}
}

// slowUserStore delays user reads so a resolution takes measurable wall
// time.
type slowUserStore struct {
	*mockUserStore
	delay time.Duration
}

func (s *slowUserStore) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	time.Sleep(s.delay)
	return s.mockUserStore.GetUser(ctx, id)
}

func TestResolveTokenLatencyObserved(t *testing.T) {
	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	users := &slowUserStore{
		mockUserStore: newMockUserStore(),
		delay:         60 * time.Millisecond,
	}
	clock := newFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserStore(users).
		WithClock(clock).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	ctx := context.Background()

	user, err := engine.CreateAccount(ctx, "alice", "alice@example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	token, err := engine.IssueToken(ctx, user.ID, false)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	if _, _, err := engine.ResolveToken(ctx, token.Token); err != nil {
		t.Fatalf("ResolveToken failed: %v", err)
	}

	buckets := engine.MetricsSnapshot().Histograms[MetricResolveLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("bucket count = %d, want %d", len(buckets), histBucketCount)
	}

	var total uint64
	for _, c := range buckets {
		total += c
	}
	if total != 1 {
		t.Fatalf("observed %d samples, want 1 (buckets %v)", total, buckets)
	}
	// The user store stalled 60ms, so the sample must sit past the
	// 5/10/25/50ms buckets.
	if buckets[0] != 0 || buckets[1] != 0 || buckets[2] != 0 || buckets[3] != 0 {
		t.Fatalf("a >=60ms resolution was recorded as fast: buckets %v", buckets)
	}
}
