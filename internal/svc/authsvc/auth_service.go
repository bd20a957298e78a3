package authsvc

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/shop/internal/domain"
	"github.com/mkrupp/shop/internal/infra/logging"
	"github.com/mkrupp/shop/internal/repo/session"
	"github.com/mkrupp/shop/internal/repo/user"
)

// AuthService is the session gate: it logs users in, resolves session ids
// to identities and terminates sessions.
type AuthService struct {
	UserRepo    user.Repository
	SessionRepo session.Repository
	Log         logging.Logger
}

// NewAuthService creates a new AuthService on the given repositories.
func NewAuthService(
	ctx context.Context,
	userRepo user.Repository,
	sessionRepoFactory session.RepositoryFactory,
) (*AuthService, error) {
	sessionRepo, err := sessionRepoFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("new session repo: %w", err)
	}

	return &AuthService{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Log:         logging.GetLogger("svc.authsvc.auth_service"),
	}, nil
}

// Login checks the credentials and opens a session bound to the matching user.
// Returns domain.ErrInvalidCredentials if either value is missing or no user
// matches both username and password exactly.
func (s *AuthService) Login(ctx context.Context, username, password string) (_ domain.Session, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			log.WarnContext(ctx, "login rejected", logging.Err(err))
		case err != nil:
			log.ErrorContext(ctx, "login failed", logging.Err(err))
		default:
			log.DebugContext(ctx, "login successful")
		}
	}()

	if username == "" || password == "" {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	account, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Session{}, errors.Join(domain.ErrInvalidCredentials, err)
		}

		return domain.Session{}, fmt.Errorf("get user: %w", err)
	}

	// Plaintext comparison, see domain.User.
	if subtle.ConstantTimeCompare([]byte(account.Password), []byte(password)) != 1 {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	sess, err := s.SessionRepo.CreateSession(ctx, domain.Identity{UserID: account.ID, Username: account.Username})
	if err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}

	log = log.With(logging.Group("session",
		"user_id", sess.UserID,
		"exp", sess.ExpiresAt.UTC().Format(time.RFC3339),
	))

	return sess, nil
}

// IdentityOf resolves a session id to the identity it is bound to.
// Returns domain.Unauthenticated and domain.ErrUnauthenticated if the id is
// empty, unknown, expired or terminated.
func (s *AuthService) IdentityOf(ctx context.Context, id domain.SessionID) (domain.Identity, error) {
	if id == "" {
		return domain.Unauthenticated, domain.ErrUnauthenticated
	}

	sess, err := s.SessionRepo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.Unauthenticated, errors.Join(domain.ErrUnauthenticated, err)
		}

		s.Log.ErrorContext(ctx, "get session failed", logging.Err(err))

		return domain.Unauthenticated, fmt.Errorf("get session: %w", err)
	}

	return sess.Identity(), nil
}

// Logout terminates the session. Later IdentityOf calls with the same id
// return domain.Unauthenticated.
func (s *AuthService) Logout(ctx context.Context, id domain.SessionID) (err error) {
	defer func() {
		if err != nil {
			s.Log.ErrorContext(ctx, "logout failed", logging.Err(err))
		} else {
			s.Log.DebugContext(ctx, "logged out")
		}
	}()

	if id == "" {
		return domain.ErrUnauthenticated
	}

	if err := s.SessionRepo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// Close releases resources held by the service, such as redis connections.
func (s *AuthService) Close() error {
	if err := s.SessionRepo.Close(); err != nil {
		return fmt.Errorf("close session repo: %w", err)
	}

	return nil
}
