package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/uranai/internal/logging"
	"github.com/aretw0/uranai/pkg/domain"
	"github.com/aretw0/uranai/pkg/ports"
)

const (
	defaultReadyAttempts = 3
	defaultReadyBackoff  = 200 * time.Millisecond
	// A turn may run until the reply window closes.
	defaultLockTTL = 60 * time.Second
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access for dialogue turns.
// Per-user locks are reference counted so idle users hold no memory.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	serialize bool
	locker    ports.DistributedLocker
	lockTTL   time.Duration

	readyAttempts int
	readyBackoff  time.Duration

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithSerialization makes WithLock serialize turns for the same user.
// When disabled (the default) concurrent turns for one user race and the last save wins.
func WithSerialization(enabled bool) Option {
	return func(m *Manager) {
		m.serialize = enabled
	}
}

// WithLocker enables distributed locking and implies serialization.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
		m.serialize = true
	}
}

// WithLockTTL sets how long a distributed lock survives a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithReadiness configures how many pings EnsureReady attempts and the base backoff between them.
func WithReadiness(attempts int, backoff time.Duration) Option {
	return func(m *Manager) {
		if attempts > 0 {
			m.readyAttempts = attempts
		}
		m.readyBackoff = backoff
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		locks:         make(map[string]*lockEntry),
		lockTTL:       defaultLockTTL,
		readyAttempts: defaultReadyAttempts,
		readyBackoff:  defaultReadyBackoff,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureReady pings the store until it answers or the attempts run out.
// It is meant to be called once per inbound batch, before any turn runs.
func (m *Manager) EnsureReady(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= m.readyAttempts; attempt++ {
		lastErr = m.store.Ping(ctx)
		if lastErr == nil {
			return nil
		}

		m.logger.Warn("Session store not ready",
			"attempt", attempt,
			"max_attempts", m.readyAttempts,
			"err", lastErr,
		)

		if attempt == m.readyAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, ctx.Err())
		case <-time.After(m.readyBackoff * time.Duration(attempt)):
		}
	}

	if errors.Is(lastErr, domain.ErrStoreUnavailable) {
		return lastErr
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, lastErr)
}

// Load returns the user's session. It never fails: a missing, corrupt, or
// unreachable record yields a default session and fresh is true.
func (m *Manager) Load(ctx context.Context, userID string) (s domain.Session, fresh bool) {
	stored, err := m.store.Load(ctx, userID)
	switch {
	case err == nil && stored != nil:
		stored.UserID = userID
		return *stored, false
	case err == nil, errors.Is(err, domain.ErrSessionNotFound):
		m.logger.Debug("No stored session, starting fresh", "user_id", userID)
	case errors.Is(err, domain.ErrStoreUnavailable):
		m.logger.Error("Session store unavailable, starting fresh", "user_id", userID, "err", err)
	default:
		m.logger.Warn("Unreadable session, starting fresh", "user_id", userID, "err", err)
	}
	return domain.NewSession(userID), true
}

// Inspect returns the stored session without the soft-fail behavior of Load.
func (m *Manager) Inspect(ctx context.Context, userID string) (*domain.Session, error) {
	return m.store.Load(ctx, userID)
}

// Save persists the session, refreshing its expiry.
func (m *Manager) Save(ctx context.Context, s domain.Session) error {
	if err := m.store.Save(ctx, &s); err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, userID string) error {
	if err := m.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Serialized reports whether WithLock serializes turns.
func (m *Manager) Serialized() bool {
	return m.serialize
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(userID) after unlocking.
func (m *Manager) acquire(userID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		entry = &lockEntry{}
		m.locks[userID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, userID)
	}
}

// WithLock runs fn as one turn for the user. With serialization disabled fn runs immediately.
// The locks are not reentrant: fn must not call WithLock for the same user.
func (m *Manager) WithLock(ctx context.Context, userID string, fn func(context.Context) error) error {
	if !m.serialize {
		return fn(ctx)
	}

	entry := m.acquire(userID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(userID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, userID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The turn context may already be done; release on a fresh one.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := unlock(releaseCtx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"user_id", userID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
