// Package redis implements the session store and the distributed locker on Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/uranai/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const (
	// DefaultNamespace is the key namespace used when none is configured.
	DefaultNamespace = "fortuneAppUserSession"
	// DefaultTTL is the sliding expiry applied on every save.
	DefaultTTL = 24 * time.Hour
)

// Store implements ports.SessionStore using Redis.
// Keys are "<namespace>:<userID>"; a sorted set indexes live sessions for List.
type Store struct {
	client    *backend.Client
	namespace string
	ttl       time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration refreshed on every save.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithNamespace sets the key namespace for sessions.
func WithNamespace(namespace string) Option {
	return func(s *Store) {
		s.namespace = namespace
	}
}

// New creates a Redis store from a redis:// or rediss:// URL.
// The connection is established lazily on first use.
func New(url string, opts ...Option) (*Store, error) {
	redisOpts, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	redisOpts.DialTimeout = 10 * time.Second
	return NewFromClient(backend.NewClient(redisOpts), opts...), nil
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client:    client,
		namespace: DefaultNamespace,
		ttl:       DefaultTTL,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client so a Locker can share the connection pool.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Key returns the Redis key holding a user's session.
func (s *Store) Key(userID string) string {
	return s.namespace + ":" + userID
}

func (s *Store) indexKey() string {
	return s.namespace + ":__index__"
}

// Save persists the session with the configured TTL.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	if session.UserID == "" {
		return fmt.Errorf("session user id cannot be empty")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := s.client.Pipeline()

	// 0 means no expiration.
	pipe.Set(ctx, s.Key(session.UserID), data, s.ttl)

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: session.UserID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to save to redis: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Load retrieves the session from Redis.
func (s *Store) Load(ctx context.Context, userID string) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.Key(userID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: failed to get from redis: %w", domain.ErrStoreUnavailable, err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	session.UserID = userID

	return &session, nil
}

// Delete removes the session and its index entry.
func (s *Store) Delete(ctx context.Context, userID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.Key(userID))
	pipe.ZRem(ctx, s.indexKey(), userID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: failed to delete from redis: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// List returns users with a live session, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	users, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return users, nil
}

// Ping checks connectivity. go-redis dials lazily, so this also establishes
// (or re-establishes) a pooled connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
