package riskassessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "healthassist:risk-session:"

type redisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore returns a SessionStore that keeps each session as a JSON
// string with a TTL, refreshed on every save.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) SessionStore {
	return &redisStore{client: client, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (r *redisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", s.ID, err)
	}
	return nil
}

func (r *redisStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}
