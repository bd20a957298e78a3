package session

import (
	"context"
	"sync"
	"time"

	"github.com/mkrupp/shop/internal/domain"
)

// MemoryRepository keeps sessions in process memory. Sessions are lost on restart
// and not shared between instances.
type MemoryRepository struct {
	ttl      time.Duration
	now      func() time.Time
	m        sync.Mutex
	sessions map[domain.SessionID]domain.Session
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory session store.
func NewMemoryRepository(cfg Config) *MemoryRepository {
	return &MemoryRepository{
		ttl:      cfg.Lifetime(),
		now:      time.Now,
		sessions: make(map[domain.SessionID]domain.Session),
	}
}

// WithClock replaces the time source. Used by tests.
func (r *MemoryRepository) WithClock(now func() time.Time) *MemoryRepository {
	r.now = now

	return r
}

// CreateSession implements Repository.CreateSession.
func (r *MemoryRepository) CreateSession(_ context.Context, identity domain.Identity) (domain.Session, error) {
	session := domain.Session{
		ID:        newSessionID(),
		UserID:    identity.UserID,
		Username:  identity.Username,
		ExpiresAt: r.now().Add(r.ttl),
	}

	r.m.Lock()
	defer r.m.Unlock()

	r.sweep()
	r.sessions[session.ID] = session

	return session, nil
}

// GetSession implements Repository.GetSession.
func (r *MemoryRepository) GetSession(_ context.Context, id domain.SessionID) (domain.Session, error) {
	r.m.Lock()
	defer r.m.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	if session.Expired(r.now()) {
		delete(r.sessions, id)

		return domain.Session{}, domain.ErrSessionNotFound
	}

	return session, nil
}

// DeleteSession implements Repository.DeleteSession.
func (r *MemoryRepository) DeleteSession(_ context.Context, id domain.SessionID) error {
	r.m.Lock()
	defer r.m.Unlock()

	delete(r.sessions, id)

	return nil
}

// Close implements Repository.Close.
func (r *MemoryRepository) Close() error {
	return nil
}

// sweep drops expired sessions. Caller holds r.m.
func (r *MemoryRepository) sweep() {
	now := r.now()

	for id, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, id)
		}
	}
}
