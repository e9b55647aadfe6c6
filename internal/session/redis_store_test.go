package session

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/pkg/redis"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *redis.Client) {
	t.Helper()
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set")
	}

	client := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: host + ":6379"}))
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Minute), client
}

func TestRedisStore_SessionLifecycle(t *testing.T) {
	store, client := newTestRedisStore(t)
	ctx := context.Background()
	sid := NewID()

	s := New(store, sid)
	require.NoError(t, s.Login(ctx, "opaque", &domain.User{ID: 3, Email: "bia@sportify.app"}))

	ttl, err := client.Client().TTL(ctx, "session:"+sid).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	reloaded := New(store, sid)
	require.NoError(t, reloaded.Hydrate(ctx))
	assert.True(t, reloaded.Authenticated())

	require.NoError(t, reloaded.Logout(ctx))
	n, err := client.Client().Exists(ctx, "session:"+sid).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
