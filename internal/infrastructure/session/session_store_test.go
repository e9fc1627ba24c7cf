package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/suraksha-api/internal/domain/repository"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisSessionStore_StartReplacesPreviousSession(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	first, err := store.Start(ctx, "u1")
	require.NoError(t, err)
	ok, err := store.Active(ctx, "u1", first)
	require.NoError(t, err)
	assert.True(t, ok)

	second, err := store.Start(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	ok, _ = store.Active(ctx, "u1", first)
	assert.False(t, ok, "old session must be revoked by a new login")
	ok, _ = store.Active(ctx, "u1", second)
	assert.True(t, ok)
}

func TestRedisSessionStore_Revoke(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisSessionStore(client, time.Hour)
	ctx := context.Background()

	sid, err := store.Start(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("user:session:u1"))

	require.NoError(t, store.Revoke(ctx, "u1"))
	ok, err := store.Active(ctx, "u1", sid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSessionStore_Expires(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisSessionStore(client, time.Minute)
	ctx := context.Background()

	sid, err := store.Start(ctx, "u1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	ok, err := store.Active(ctx, "u1", sid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSessionStore_EmptySessionIDNeverActive(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisSessionStore(client, time.Hour)

	_, err := store.Start(context.Background(), "u1")
	require.NoError(t, err)
	ok, err := store.Active(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisResetTokenStore_Lifecycle(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisResetTokenStore(client, 30*time.Minute)
	ctx := context.Background()

	tok, err := store.Issue(ctx, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	uid, err := store.Lookup(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	uid, err = store.Consume(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
	_, err = store.Lookup(ctx, tok)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)

	tok2, err := store.Issue(ctx, "u2")
	require.NoError(t, err)
	mr.FastForward(31 * time.Minute)
	_, err = store.Lookup(ctx, tok2)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
}

func TestRedisResetTokenStore_EmptyToken(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisResetTokenStore(client, time.Minute)

	_, err := store.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
}

func TestRedisResetTokenStore_ConsumeIsSingleUse(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisResetTokenStore(client, time.Hour)
	ctx := context.Background()

	tok, err := store.Issue(ctx, "u1")
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if uid, err := store.Consume(ctx, tok); err == nil && uid == "u1" {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())

	_, err = store.Consume(ctx, tok)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
}

func TestRedisResetTokenStore_ReissueInvalidatesPrevious(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisResetTokenStore(client, time.Hour)
	ctx := context.Background()

	first, err := store.Issue(ctx, "u1")
	require.NoError(t, err)
	second, err := store.Issue(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = store.Lookup(ctx, first)
	assert.ErrorIs(t, err, repository.ErrTokenNotFound)
	assert.False(t, mr.Exists("pwd:reset:token:"+first))

	uid, err := store.Consume(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	other, err := store.Issue(ctx, "u2")
	require.NoError(t, err)
	_, err = store.Lookup(ctx, other)
	assert.NoError(t, err, "tokens of other users are untouched")
}
