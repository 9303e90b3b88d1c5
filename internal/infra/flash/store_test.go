package flash

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, time.Minute), mr
}

func newMemoryStore() *MemoryStore {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewMemoryStore(time.Minute, log)
}

func TestStores_PopIsOneShot(t *testing.T) {
	redisStore, _ := newRedisStore(t)
	stores := map[string]Store{
		"redis":  redisStore,
		"memory": newMemoryStore(),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Ping(ctx))

			got, err := s.Pop(ctx, "missing")
			require.NoError(t, err)
			require.Nil(t, got)

			require.NoError(t, s.Put(ctx, "k", Failure("Category not found.")))

			got, err = s.Pop(ctx, "k")
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, "Category not found.", got.Message)
			require.NotNil(t, got.IsSuccess)
			require.False(t, *got.IsSuccess)

			got, err = s.Pop(ctx, "k")
			require.NoError(t, err)
			require.Nil(t, got)
		})
	}
}

func TestRedisStore_ExpiresWithTTL(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", Success("Category created successfully.")))
	require.True(t, mr.Exists("flash:k"))
	require.Equal(t, time.Minute, mr.TTL("flash:k"))

	mr.FastForward(2 * time.Minute)
	got, err := s.Pop(ctx, "k")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestMemoryStore_ExpiryAndSweep(t *testing.T) {
	s := newMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "old", Success("a")))
	require.NoError(t, s.Put(ctx, "expired-on-read", Success("b")))
	now = now.Add(30 * time.Second)
	require.NoError(t, s.Put(ctx, "fresh", Success("c")))

	now = now.Add(45 * time.Second)
	got, err := s.Pop(ctx, "expired-on-read")
	require.NoError(t, err)
	require.Nil(t, got)

	require.Equal(t, 1, s.Sweep())
	require.Equal(t, 1, s.Len())

	got, err = s.Pop(ctx, "fresh")
	require.NoError(t, err)
	require.Equal(t, "c", got.Message)
	require.Nil(t, got.IsSuccess)
}

func TestMemoryStore_StartStop(t *testing.T) {
	s := newMemoryStore()
	require.NoError(t, s.Start())
	s.Stop()
}
