package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-assistant/internal/models"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour)
}

func sampleSession(id string) *Session {
	state := models.NewApplicationState(id)
	state.Phone = "9876543210"
	state.Verified = true
	state.RequestedAmount = 500000
	return &Session{
		State: state,
		History: []models.Message{
			{Role: "user", Content: "I need a loan"},
			{Role: "assistant", Content: "How much would you like to borrow?"},
		},
	}
}

func TestRedisStore_RoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", sampleSession("s1")))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "9876543210", got.State.Phone)
	assert.Equal(t, int64(500000), got.State.RequestedAmount)
	assert.Len(t, got.History, 2)
}

func TestRedisStore_GetMissing(t *testing.T) {
	store := newRedisStore(t)

	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_Delete(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "s1", sampleSession("s1")))
	require.NoError(t, store.Delete(ctx, "s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_CopiesState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := sampleSession("s1")
	require.NoError(t, store.Put(ctx, "s1", sess))

	// Mutating the original must not leak into the stored copy.
	sess.State.RequestedAmount = 999999

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(500000), got.State.RequestedAmount)
}
