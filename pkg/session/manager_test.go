package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/uranai/pkg/adapters/memory"
	"github.com/aretw0/uranai/pkg/adapters/redis"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/aretw0/uranai/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]domain.Session
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sess *domain.Session) error {
	time.Sleep(10 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]domain.Session)
	}
	s.data[sess.UserID] = *sess
	return nil
}

func (s *SlowStore) Load(ctx context.Context, userID string) (*domain.Session, error) {
	time.Sleep(10 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.data[userID]; ok {
		return &sess, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) { return nil, nil }
func (s *SlowStore) Ping(ctx context.Context) error            { return nil }

// FlakyStore fails Ping a fixed number of times and every other call with err.
type FlakyStore struct {
	SlowStore
	pingFailures int32
	pings        atomic.Int32
	err          error
}

func (f *FlakyStore) Ping(ctx context.Context) error {
	n := f.pings.Add(1)
	if n <= f.pingFailures {
		return errors.New("connection refused")
	}
	return nil
}

func (f *FlakyStore) Load(ctx context.Context, userID string) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.SlowStore.Load(ctx, userID)
}

func (f *FlakyStore) Save(ctx context.Context, sess *domain.Session) error {
	if f.err != nil {
		return f.err
	}
	return f.SlowStore.Save(ctx, sess)
}

// readModifyWrite appends a character to the name, the shape of a dialogue turn.
func readModifyWrite(t *testing.T, m *session.Manager, userID string) {
	err := m.WithLock(context.Background(), userID, func(ctx context.Context) error {
		s, _ := m.Load(ctx, userID)
		s.Name += "x"
		return m.Save(ctx, s)
	})
	assert.NoError(t, err)
}

func TestManager_SerializedTurnsKeepEveryUpdate(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store, session.WithSerialization(true))
	id := "U-race"

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			readModifyWrite(t, manager, id)
		}()
	}
	wg.Wait()

	s, fresh := manager.Load(context.Background(), id)
	assert.False(t, fresh)
	assert.Equal(t, "xxxxxxxxxx", s.Name)
}

func TestManager_UnserializedTurnsLoseUpdates(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	id := "U-race"

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			readModifyWrite(t, manager, id)
		}()
	}
	wg.Wait()

	s, _ := manager.Load(context.Background(), id)
	assert.Less(t, len(s.Name), 10, "last writer wins without serialization")
	assert.NotEmpty(t, s.Name)
}

func TestManager_LoadSoftFails(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		err  error
	}{
		{"not found", domain.ErrSessionNotFound},
		{"store down", domain.ErrStoreUnavailable},
		{"corrupt record", errors.New("failed to unmarshal session: unexpected end of JSON input")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := session.NewManager(&FlakyStore{err: tt.err})
			s, fresh := manager.Load(ctx, "U1")
			assert.True(t, fresh)
			assert.Equal(t, domain.NewSession("U1"), s)
		})
	}
}

func TestManager_SaveWrapsStoreErrors(t *testing.T) {
	manager := session.NewManager(&FlakyStore{err: errors.New("i/o timeout")})
	err := manager.Save(context.Background(), domain.NewSession("U1"))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestManager_EnsureReady(t *testing.T) {
	ctx := context.Background()

	t.Run("recovers within attempts", func(t *testing.T) {
		store := &FlakyStore{pingFailures: 2}
		manager := session.NewManager(store, session.WithReadiness(3, time.Millisecond))
		assert.NoError(t, manager.EnsureReady(ctx))
		assert.Equal(t, int32(3), store.pings.Load())
	})

	t.Run("fails fast after attempts", func(t *testing.T) {
		store := &FlakyStore{pingFailures: 100}
		manager := session.NewManager(store, session.WithReadiness(2, time.Millisecond))
		err := manager.EnsureReady(ctx)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.Equal(t, int32(2), store.pings.Load())
	})

	t.Run("honors cancellation", func(t *testing.T) {
		store := &FlakyStore{pingFailures: 100}
		manager := session.NewManager(store, session.WithReadiness(5, time.Hour))
		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		err := manager.EnsureReady(cctx)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestManager_EnsureReadyAgainstRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	manager := session.NewManager(redis.NewFromClient(client), session.WithReadiness(2, time.Millisecond))
	ctx := context.Background()
	require.NoError(t, manager.EnsureReady(ctx))

	mr.Close()
	assert.ErrorIs(t, manager.EnsureReady(ctx), domain.ErrStoreUnavailable)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewFromClient(client)
	// Two managers stand in for two replicas sharing one redis.
	replicaA := session.NewManager(store, session.WithLocker(redis.NewLocker(client, "uranai:")))
	replicaB := session.NewManager(store, session.WithLocker(redis.NewLocker(client, "uranai:")))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); readModifyWrite(t, replicaA, "U1") }()
		go func() { defer wg.Done(); readModifyWrite(t, replicaB, "U1") }()
	}
	wg.Wait()

	s, _ := replicaA.Load(context.Background(), "U1")
	assert.Equal(t, "xxxxxxxx", s.Name)
	assert.False(t, mr.Exists("uranai:lock:U1"))
}

func TestManager_DeleteAndList(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, domain.Session{UserID: "U1", Step: domain.StepAwaitingName}))
	require.NoError(t, manager.Save(ctx, domain.Session{UserID: "U2", Step: domain.StepAwaitingName}))

	users, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2"}, users)

	require.NoError(t, manager.Delete(ctx, "U1"))
	_, err = manager.Inspect(ctx, "U1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
