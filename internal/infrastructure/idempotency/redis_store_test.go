package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStore_SegundaVezEsDuplicado(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "org-1:sales:abc")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Acquire(ctx, "org-1:sales:abc")
	require.NoError(t, err)
	assert.False(t, ok, "la misma clave no se acepta dos veces")

	ok, err = store.Acquire(ctx, "org-2:sales:abc")
	require.NoError(t, err)
	assert.True(t, ok, "las claves se separan por organización")
}

func TestRedisStore_ExpiraConTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"k"))

	mr.FastForward(2 * time.Minute)
	ok, err = store.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore_ReleasePermiteReintentar(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	ok, err := store.Acquire(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, store.Release(ctx, "k"))

	ok, err = store.Acquire(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore_ErrorDeConexion(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	mr.Close()

	_, err := store.Acquire(context.Background(), "k")
	assert.Error(t, err)
}
