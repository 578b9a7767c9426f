package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/uranai/pkg/adapters/redis"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/aretw0/uranai/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redis.NewFromClient(client, opts...)
}

func TestRedisStore_Contract(t *testing.T) {
	_, store := newTestStore(t)
	ports.RunSessionStoreContract(t, store)
}

func TestRedisStore_KeyLayout(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	s := &domain.Session{UserID: "U123", Step: domain.StepAwaitingBirth, Name: "花子"}
	require.NoError(t, store.Save(ctx, s))

	raw, err := mr.Get("fortuneAppUserSession:U123")
	require.NoError(t, err)
	assert.JSONEq(t, `{"step":2,"name":"花子","birth":"","theme":""}`, raw)
}

func TestRedisStore_CustomNamespace(t *testing.T) {
	mr, store := newTestStore(t, redis.WithNamespace("staging"))
	ctx := context.Background()

	s := domain.NewSession("U1")
	require.NoError(t, store.Save(ctx, &s))
	assert.True(t, mr.Exists("staging:U1"))
	assert.False(t, mr.Exists("fortuneAppUserSession:U1"))
}

func TestRedisStore_LoadLegacyRecord(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()

	// Records written before the index existed carry only the value.
	require.NoError(t, mr.Set("fortuneAppUserSession:U9", `{"step":3,"name":"太郎","birth":"1990-01-01","theme":""}`))

	s, err := store.Load(ctx, "U9")
	require.NoError(t, err)
	assert.Equal(t, "U9", s.UserID)
	assert.Equal(t, domain.StepAwaitingTheme, s.Step)
	assert.Equal(t, "1990-01-01", s.Birth)
}

func TestRedisStore_SaveRefreshesTTL(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()
	key := "fortuneAppUserSession:U1"

	s := domain.NewSession("U1")
	require.NoError(t, store.Save(ctx, &s))
	assert.Equal(t, 24*time.Hour, mr.TTL(key))

	mr.FastForward(23 * time.Hour)
	assert.Equal(t, time.Hour, mr.TTL(key))

	s.Step = domain.StepAwaitingName
	require.NoError(t, store.Save(ctx, &s))
	assert.Equal(t, 24*time.Hour, mr.TTL(key))
}

func TestRedisStore_ExpiredSessionIsNotFound(t *testing.T) {
	mr, store := newTestStore(t, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.Session{UserID: "U-ttl", Step: domain.StepAwaitingName}))
	mr.FastForward(2 * time.Second)

	_, err := store.Load(ctx, "U-ttl")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The index is pruned against wall-clock time.
	time.Sleep(1200 * time.Millisecond)

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	mr.Close()

	assert.ErrorIs(t, store.Ping(ctx), domain.ErrStoreUnavailable)
	s := domain.NewSession("U1")
	assert.ErrorIs(t, store.Save(ctx, &s), domain.ErrStoreUnavailable)

	_, err := store.Load(ctx, "U1")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_Reconnects(t *testing.T) {
	mr, store := newTestStore(t)
	ctx := context.Background()
	mr.Close()
	require.Error(t, store.Ping(ctx))

	require.NoError(t, mr.Restart())
	assert.NoError(t, store.Ping(ctx))
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := redis.New("http://not-redis")
	assert.Error(t, err)
}

func TestNew_FromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := redis.New("redis://"+mr.Addr()+"/0", redis.WithNamespace("ns"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))
	s := domain.NewSession("U1")
	require.NoError(t, store.Save(ctx, &s))
	assert.True(t, mr.Exists("ns:U1"))
}
