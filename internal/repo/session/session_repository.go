package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrupp/shop/internal/domain"
)

// ErrUnknownBackend is returned when the configured session backend is not supported.
var ErrUnknownBackend = errors.New("unknown session backend")

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds configuration for session storage.
type Config struct {
	// Backend selects the store: "memory" or "redis"
	Backend string `env:"BACKEND" default:"memory"`

	// TTL is the session lifetime in seconds
	TTL int64 `env:"TTL" default:"86400"` // 24h

	// RedisURL is used by the redis backend
	RedisURL string `env:"REDIS_URL" default:"redis://localhost:6379/0"`

	// RedisPrefix namespaces session keys in redis
	RedisPrefix string `env:"REDIS_PREFIX" default:"shop:session:"`
}

// Lifetime returns the TTL as a duration.
func (c Config) Lifetime() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// Repository stores session bindings. Sessions are not part of the relational store.
type Repository interface {
	// CreateSession binds a new random session id to the identity.
	CreateSession(ctx context.Context, identity domain.Identity) (domain.Session, error)

	// GetSession returns a live session.
	// Returns domain.ErrSessionNotFound if the id is unknown, expired or deleted.
	GetSession(ctx context.Context, id domain.SessionID) (domain.Session, error)

	// DeleteSession terminates a session. Deleting an unknown session is not an error.
	DeleteSession(ctx context.Context, id domain.SessionID) error

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func(ctx context.Context) (Repository, error)

// NewRepositoryFactory returns a factory for the configured backend.
func NewRepositoryFactory(cfg Config) RepositoryFactory {
	return func(ctx context.Context) (Repository, error) {
		switch cfg.Backend {
		case BackendMemory, "":
			return NewMemoryRepository(cfg), nil
		case BackendRedis:
			return NewRedisRepository(ctx, cfg)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
		}
	}
}

func newSessionID() domain.SessionID {
	return domain.SessionID(uuid.NewString())
}
