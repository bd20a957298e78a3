package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mkrupp/shop/internal/domain"
	"github.com/mkrupp/shop/internal/infra/logging"
)

// RedisRepository stores sessions as JSON values with a key TTL, so expiry
// is enforced by redis and sessions are shared between instances.
type RedisRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    logging.Logger
}

var _ Repository = (*RedisRepository)(nil)

// NewRedisRepository connects to cfg.RedisURL and verifies the connection.
func NewRedisRepository(ctx context.Context, cfg Config) (*RedisRepository, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()

		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisRepositoryWithClient(client, cfg), nil
}

// NewRedisRepositoryWithClient creates a repository on an existing client.
func NewRedisRepositoryWithClient(client *redis.Client, cfg Config) *RedisRepository {
	return &RedisRepository{
		client: client,
		prefix: cfg.RedisPrefix,
		ttl:    cfg.Lifetime(),
		log: logging.GetLogger("repo.session.redis_session_repository").With(
			logging.Group("redis", "addr", client.Options().Addr),
		),
	}
}

func (r *RedisRepository) key(id domain.SessionID) string {
	return r.prefix + id.String()
}

// CreateSession implements Repository.CreateSession.
func (r *RedisRepository) CreateSession(ctx context.Context, identity domain.Identity) (domain.Session, error) {
	session := domain.Session{
		ID:        newSessionID(),
		UserID:    identity.UserID,
		Username:  identity.Username,
		ExpiresAt: time.Now().Add(r.ttl),
	}

	value, err := json.Marshal(session)
	if err != nil {
		return domain.Session{}, fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.key(session.ID), value, r.ttl).Err(); err != nil {
		return domain.Session{}, fmt.Errorf("set session: %w", err)
	}

	return session, nil
}

// GetSession implements Repository.GetSession.
func (r *RedisRepository) GetSession(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	value, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, domain.ErrSessionNotFound
		}

		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(value, &session); err != nil {
		r.log.WarnContext(ctx, "corrupt session value", logging.Err(err))

		return domain.Session{}, errors.Join(domain.ErrSessionNotFound, fmt.Errorf("unmarshal session: %w", err))
	}

	return session, nil
}

// DeleteSession implements Repository.DeleteSession.
func (r *RedisRepository) DeleteSession(ctx context.Context, id domain.SessionID) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// Close implements Repository.Close.
func (r *RedisRepository) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}

	return nil
}
