package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/suraksha-api/internal/domain/repository"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
)

// RedisResetTokenStore keeps single-use password reset tokens; the key
// expires with the token. Each user has at most one live token.
type RedisResetTokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

type resetRecord struct {
	UserID   string    `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

func NewRedisResetTokenStore(rdb *redis.Client, ttl time.Duration) *RedisResetTokenStore {
	return &RedisResetTokenStore{rdb: rdb, ttl: ttl}
}

func keyResetToken(t string) string { return "pwd:reset:token:" + t }
func keyResetUser(uid string) string { return "pwd:reset:user:" + uid }

func genToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Issue stores a fresh token and invalidates the one issued before it.
func (s *RedisResetTokenStore) Issue(ctx context.Context, userID string) (string, error) {
	tok, err := genToken(32)
	if err != nil {
		return "", err
	}
	rec := resetRecord{UserID: userID, IssuedAt: time.Now().UTC()}
	if err := helpers.RedisSetJSON(ctx, s.rdb, keyResetToken(tok), rec, s.ttl); err != nil {
		return "", err
	}
	prev, err := s.rdb.SetArgs(ctx, keyResetUser(userID), tok, redis.SetArgs{TTL: s.ttl, Get: true}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	if prev != "" && prev != tok {
		if err := helpers.RedisDel(ctx, s.rdb, keyResetToken(prev)); err != nil {
			return "", err
		}
	}
	return tok, nil
}

func (s *RedisResetTokenStore) Lookup(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", repository.ErrTokenNotFound
	}
	var rec resetRecord
	found, err := helpers.RedisGetJSON(ctx, s.rdb, keyResetToken(token), &rec)
	if err != nil {
		return "", err
	}
	if !found || rec.UserID == "" {
		return "", repository.ErrTokenNotFound
	}
	return rec.UserID, nil
}

// Consume atomically claims the token. Only one caller ever gets the
// user id back; everyone else sees ErrTokenNotFound.
func (s *RedisResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", repository.ErrTokenNotFound
	}
	raw, err := s.rdb.GetDel(ctx, keyResetToken(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	var rec resetRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec.UserID == "" {
		return "", repository.ErrTokenNotFound
	}
	return rec.UserID, nil
}

var _ repository.ResetTokenStore = (*RedisResetTokenStore)(nil)
