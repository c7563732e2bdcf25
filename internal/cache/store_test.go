package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ""), mr
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "pet:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "pet:1", []byte(`{"ID":1}`)))
	require.NoError(t, s.Set(ctx, "pets:all", []byte(`[]`)))

	v, ok, err := s.Get(ctx, "pet:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"ID":1}`, string(v))

	require.NoError(t, s.Set(ctx, "pet:1", []byte(`{"ID":2}`)))
	v, _, err = s.Get(ctx, "pet:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ID":2}`, string(v))

	require.NoError(t, s.Delete(ctx, "pet:1", "missing"))
	_, ok, err = s.Get(ctx, "pet:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Clear(ctx))
	_, ok, err = s.Get(ctx, "pets:all")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	s, err := NewMemoryStore(16)
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestNewMemoryStore_InvalidSize(t *testing.T) {
	_, err := NewMemoryStore(0)
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	s, _ := newRedisStore(t)
	exerciseStore(t, s)
}

func TestRedisStore_UsesPrefixAndNoTTL(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "dogBreeds:abc", []byte(`{}`)))
	assert.True(t, mr.Exists(DefaultRedisPrefix+"dogBreeds:abc"))
	assert.Zero(t, mr.TTL(DefaultRedisPrefix+"dogBreeds:abc"))
}

func TestRedisStore_ClearKeepsForeignKeys(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("other:key", "x"))
	require.NoError(t, s.Set(ctx, "pet:1", []byte(`{}`)))
	require.NoError(t, s.Clear(ctx))

	assert.True(t, mr.Exists("other:key"))
	assert.False(t, mr.Exists(DefaultRedisPrefix+"pet:1"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	_, _, err := s.Get(context.Background(), "pet:1")
	assert.Error(t, err)
	assert.Error(t, s.Delete(context.Background(), "pet:1"))
}

func TestManager_WithRedisStore(t *testing.T) {
	s, _ := newRedisStore(t)
	m := NewManager(s)
	ctx := context.Background()
	ref := Ref{Region: RegionPetRecords, Key: "3"}

	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"vaccine"}, nil
	}
	for i := 0; i < 3; i++ {
		got, err := Fetch(ctx, m, ref, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"vaccine"}, got)
	}
	assert.Equal(t, 1, calls)
}
