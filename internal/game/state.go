package game

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Sessions idle past this window are considered abandoned and expire.
const defaultSessionTTL = 2 * time.Hour

// SessionStore persists ephemeral session state in Redis with atomic locks.
type SessionStore struct {
	redis  *redis.Client
	logger zerolog.Logger
	ttl    time.Duration
}

// NewSessionStore creates a session store backed by Redis.
func NewSessionStore(redis *redis.Client, logger zerolog.Logger, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		redis:  redis,
		logger: logger,
		ttl:    ttl,
	}
}

func sessionKey(id uuid.UUID) string {
	return fmt.Sprintf("session:state:%s", id.String())
}

// Lock acquires a per-session lock so a session only ever has one in-flight
// mutation. Returns an unlock function. Lock expires after 30s.
func (s *SessionStore) Lock(ctx context.Context, id uuid.UUID) (func() error, error) {
	key := fmt.Sprintf("session:lock:%s", id.String())
	lockValue := uuid.New().String()

	acquired, err := s.redis.SetNX(ctx, key, lockValue, 30*time.Second).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("lock already held")
	}

	unlock := func() error {
		// Lua script ensures we only delete our own lock
		script := `
			if redis.call("get", KEYS[1]) == ARGV[1] then
				return redis.call("del", KEYS[1])
			else
				return 0
			end
		`
		return s.redis.Eval(ctx, script, []string{key}, lockValue).Err()
	}

	return unlock, nil
}

// Save writes the session state, refreshing the TTL.
func (s *SessionStore) Save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.redis.Set(ctx, sessionKey(session.ID), data, s.ttl).Err()
}

// Get retrieves a session. A missing key returns (nil, nil).
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	data, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes a session's state.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.redis.Del(ctx, sessionKey(id)).Err()
}
