package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound is returned when no record exists for the token string.
	ErrNotFound = errors.New("token not found")
	// ErrExpired is returned when a record exists but its expiry has
	// passed at the caller-supplied instant.
	ErrExpired = errors.New("token expired")
	// ErrRedisUnavailable wraps transport-level Redis failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Store is a Redis-backed auth-token store. Each record carries its own
// expiry timestamp and is additionally written with a matching Redis TTL;
// validity is computed at lookup time against the caller's clock, so no
// background sweeper is required. A per-user index set makes revoke-all
// possible without scanning.
//
// The store never reads the wall clock: every method that compares expiry
// takes the instant from the caller.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a token [Store] backed by the given Redis client.
// prefix namespaces token keys.
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "at"
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(token string) string {
	return s.prefix + ":" + token
}

func (s *Store) userKey(userID string) string {
	return s.prefix + "u:" + userID
}

// Save persists a token record and adds it to the owner's index. The
// Redis TTL mirrors the record's expiry.
func (s *Store) Save(ctx context.Context, t *Token, now time.Time) error {
	ttl := t.Expiry().Sub(now)
	if ttl <= 0 {
		return errors.New("token expiry must be in the future")
	}

	data, err := Encode(t)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(t.Token), data, ttl)
		pipe.SAdd(ctx, s.userKey(t.UserID), t.Token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get retrieves a token record. A missing record yields [ErrNotFound]; a
// record past its expiry is deleted and yields [ErrExpired].
func (s *Store) Get(ctx context.Context, token string, now time.Time) (*Token, error) {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	t, err := Decode(data)
	if err != nil {
		return nil, err
	}
	t.Token = token

	if t.ExpiredAt(now) {
		if err := s.deleteTokenAndIndex(ctx, t.UserID, token); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}

	return t, nil
}

// SetExpiry moves a token's expiry forward and refreshes the Redis TTL.
// The update is forward-only: a candidate expiry earlier than the stored
// one is ignored, so two racing extensions can only lengthen the window.
func (s *Store) SetExpiry(ctx context.Context, token string, expiresAt, now time.Time) error {
	key := s.key(token)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	t, err := Decode(data)
	if err != nil {
		return err
	}

	if expiresAt.Unix() <= t.ExpiresAt {
		return nil
	}
	t.ExpiresAt = expiresAt.Unix()

	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return ErrExpired
	}

	updated, err := Encode(t)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, key, updated, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Delete removes a single token. Deleting an absent token is a no-op.
func (s *Store) Delete(ctx context.Context, token string) error {
	data, err := s.redis.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	t, err := Decode(data)
	if err != nil {
		return err
	}

	return s.deleteTokenAndIndex(ctx, t.UserID, token)
}

// DeleteAllForUser removes every token in the user's index.
//
// ATOMICITY NOTE: the index read (SMembers) and the deletes run in
// separate round trips; a token issued between the two is not captured.
// The window only matters for revoke-all semantics and the stray token is
// caught by natural expiry or the next DeleteAllForUser call.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) error {
	userKey := s.userKey(userID)

	tokens, err := s.redis.SMembers(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	keys := make([]string, 0, len(tokens))
	for _, token := range tokens {
		keys = append(keys, s.key(token))
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, userKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// ActiveTokens returns the user's unexpired token records without
// mutating any store state.
func (s *Store) ActiveTokens(ctx context.Context, userID string, now time.Time) ([]*Token, error) {
	tokens, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*Token{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(tokens) == 0 {
		return []*Token{}, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(tokens))
	for i, token := range tokens {
		cmds[i] = pipe.Get(ctx, s.key(token))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	out := make([]*Token, 0, len(tokens))
	for i, cmd := range cmds {
		data, cmdErr := cmd.Bytes()
		if cmdErr != nil {
			if errors.Is(cmdErr, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, cmdErr)
		}

		t, decErr := Decode(data)
		if decErr != nil {
			return nil, decErr
		}
		t.Token = tokens[i]
		if t.ExpiredAt(now) {
			continue
		}
		out = append(out, t)
	}

	return out, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *Store) deleteTokenAndIndex(ctx context.Context, userID, token string) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(token))
		pipe.SRem(ctx, s.userKey(userID), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
