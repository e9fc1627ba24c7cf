package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/suraksha-api/internal/domain/repository"
)

// RedisSessionStore keeps one session hash per user. A bearer token is
// valid only while its sid matches the hash, so starting a new session or
// deleting the hash revokes every token issued before.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func (s *RedisSessionStore) Start(ctx context.Context, userID string) (string, error) {
	sid := uuid.NewString()
	key := sessionKey(userID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    userID,
		"sid":        sid,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return sid, nil
}

func (s *RedisSessionStore) Active(ctx context.Context, userID, sessionID string) (bool, error) {
	sid, err := s.rdb.HGet(ctx, sessionKey(userID), "sid").Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sessionID != "" && sid == sessionID, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}

var _ repository.SessionStore = (*RedisSessionStore)(nil)
