package tokenstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwtWithExpiry(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// exercise runs the contract shared by every Store.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Clear(ctx), "clear on empty store")

	require.NoError(t, s.Save(ctx, "first"))
	require.NoError(t, s.Save(ctx, "second"))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	require.NoError(t, s.Clear(ctx))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.Save(ctx, "newer"))
	require.NoError(t, s.ClearIf(ctx, "older"), "clear-if with another token")
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "newer", got)

	require.NoError(t, s.ClearIf(ctx, "newer"))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.ClearIf(ctx, "newer"), "clear-if on empty store")
}

func TestMemory(t *testing.T) {
	exercise(t, NewMemory())
}

func TestMemoryFactory(t *testing.T) {
	exercise(t, NewMemoryFactory(time.Hour).Scope("sid-1"))
}

func TestMemoryFactoryScopes(t *testing.T) {
	ctx := context.Background()
	f := NewMemoryFactory(time.Hour)

	require.NoError(t, f.Scope("a").Save(ctx, "tok-a"))

	got, err := f.Scope("a").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-a", got)

	got, err = f.Scope("b").Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryFactoryRetainsOnlyLiveTokens(t *testing.T) {
	ctx := context.Background()
	f := NewMemoryFactory(time.Hour)
	now := time.Now()
	f.now = func() time.Time { return now }

	for i := range 100 {
		s := f.Scope(fmt.Sprintf("anon-%d", i))
		got, err := s.Load(ctx)
		require.NoError(t, err)
		require.Empty(t, got)
	}
	assert.Zero(t, f.Len(), "lookups must not create entries")

	require.NoError(t, f.Scope("a").Save(ctx, "opaque"))
	require.NoError(t, f.Scope("b").Save(ctx, "opaque"))
	assert.Equal(t, 2, f.Len())

	require.NoError(t, f.Scope("a").Clear(ctx))
	assert.Equal(t, 1, f.Len())

	now = now.Add(2 * time.Hour)
	got, err := f.Scope("b").Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got, "entry outlived its ttl")
	assert.Zero(t, f.Len())
}

func TestMemoryFactorySweepsOnSave(t *testing.T) {
	ctx := context.Background()
	f := NewMemoryFactory(time.Minute)
	now := time.Now()
	f.now = func() time.Time { return now }

	for i := range 10 {
		require.NoError(t, f.Scope(fmt.Sprintf("s-%d", i)).Save(ctx, "opaque"))
	}
	now = now.Add(2 * time.Minute)
	require.NoError(t, f.Scope("live").Save(ctx, "opaque"))

	f.mu.Lock()
	n := len(f.entries)
	f.mu.Unlock()
	assert.Equal(t, 1, n)
}

func TestMemoryFactoryRejectsExpiredJWT(t *testing.T) {
	f := NewMemoryFactory(time.Hour)
	err := f.Scope("s").Save(context.Background(), jwtWithExpiry(t, time.Now().Add(-time.Minute)))
	assert.ErrorIs(t, err, ErrExpired)
	assert.Zero(t, f.Len())
}

func TestFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	f := NewFile(dir)
	exercise(t, f)

	require.NoError(t, f.Save(context.Background(), "persisted"))
	info, err := os.Stat(f.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// a fresh instance over the same dir sees the token
	got, err := NewFile(dir).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "persisted", got)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedis(t *testing.T) {
	_, client := newRedis(t)
	exercise(t, NewRedisFactory(client, time.Hour).Scope("sid-1"))
}

func TestRedisKeyAndTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := newRedis(t)
	f := NewRedisFactory(client, time.Hour)

	t.Run("opaque token uses max ttl", func(t *testing.T) {
		require.NoError(t, f.Scope("s1").Save(ctx, "opaque"))
		assert.True(t, mr.Exists("session:s1:token"))
		assert.Equal(t, time.Hour, mr.TTL("session:s1:token"))
	})

	t.Run("jwt expiry shortens ttl", func(t *testing.T) {
		tok := jwtWithExpiry(t, time.Now().Add(10*time.Minute))
		require.NoError(t, f.Scope("s2").Save(ctx, tok))
		ttl := mr.TTL("session:s2:token")
		assert.Greater(t, ttl, 9*time.Minute)
		assert.LessOrEqual(t, ttl, 10*time.Minute)
	})

	t.Run("jwt expiry capped by max ttl", func(t *testing.T) {
		tok := jwtWithExpiry(t, time.Now().Add(48*time.Hour))
		require.NoError(t, f.Scope("s3").Save(ctx, tok))
		assert.Equal(t, time.Hour, mr.TTL("session:s3:token"))
	})

	t.Run("expired jwt is rejected", func(t *testing.T) {
		tok := jwtWithExpiry(t, time.Now().Add(-time.Minute))
		err := f.Scope("s4").Save(ctx, tok)
		assert.ErrorIs(t, err, ErrExpired)
		assert.False(t, mr.Exists("session:s4:token"))
	})

	t.Run("clear-if keeps a replaced token", func(t *testing.T) {
		s := f.Scope("s6")
		require.NoError(t, s.Save(ctx, "newer"))
		require.NoError(t, s.ClearIf(ctx, "older"))
		assert.True(t, mr.Exists("session:s6:token"))
		require.NoError(t, s.ClearIf(ctx, "newer"))
		assert.False(t, mr.Exists("session:s6:token"))
	})

	t.Run("entry disappears when ttl elapses", func(t *testing.T) {
		s := f.Scope("s5")
		require.NoError(t, s.Save(ctx, "opaque"))
		mr.FastForward(2 * time.Hour)
		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
