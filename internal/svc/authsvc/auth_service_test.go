package authsvc_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/shop/internal/domain"
	"github.com/mkrupp/shop/internal/infra/database"
	"github.com/mkrupp/shop/internal/repo/session"
	"github.com/mkrupp/shop/internal/repo/user"
	"github.com/mkrupp/shop/internal/svc/authsvc"
)

var ErrRepoError = errors.New("repository error")

type failingUserRepository struct {
	user.Repository
}

func (failingUserRepository) GetUserByUsername(context.Context, string) (domain.User, error) {
	return domain.User{}, ErrRepoError
}

type fixture struct {
	svc      *authsvc.AuthService
	sessions *session.MemoryRepository
	now      time.Time
	aliceID  int64
}

func setupTestService(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "shop.db"),
		BusyTimeout: 1000,
		Migrate:     true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := user.NewSQLiteUserRepository(db)

	aliceID, err := users.CreateUser(ctx, "alice", "pw1")
	require.NoError(t, err)

	f := &fixture{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), aliceID: aliceID}
	f.sessions = session.NewMemoryRepository(session.Config{TTL: 3600}).WithClock(func() time.Time { return f.now })

	f.svc, err = authsvc.NewAuthService(ctx, users, func(context.Context) (session.Repository, error) {
		return f.sessions, nil
	})
	require.NoError(t, err)
	t.Cleanup(func() { f.svc.Close() })

	return f
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "valid credentials", username: "alice", password: "pw1"},
		{name: "wrong password", username: "alice", password: "pw2", wantErr: domain.ErrInvalidCredentials},
		{name: "unknown user", username: "mallory", password: "pw1", wantErr: domain.ErrInvalidCredentials},
		{name: "username is case sensitive", username: "Alice", password: "pw1", wantErr: domain.ErrInvalidCredentials},
		{name: "empty username", password: "pw1", wantErr: domain.ErrInvalidCredentials},
		{name: "empty password", username: "alice", wantErr: domain.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := setupTestService(t)

			sess, err := f.svc.Login(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, sess.ID)

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, sess.ID)
			assert.Equal(t, f.aliceID, sess.UserID)
			assert.Equal(t, f.now.Add(time.Hour), sess.ExpiresAt)
		})
	}
}

func TestAuthService_LoginRepositoryError(t *testing.T) {
	t.Parallel()

	f := setupTestService(t)
	f.svc.UserRepo = failingUserRepository{}

	_, err := f.svc.Login(context.Background(), "alice", "pw1")
	require.ErrorIs(t, err, ErrRepoError)
	assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_IdentityOf(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupTestService(t)

	identity, err := f.svc.IdentityOf(ctx, "")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, domain.Unauthenticated, identity)

	identity, err = f.svc.IdentityOf(ctx, "no-such-session")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, domain.Unauthenticated, identity)

	sess, err := f.svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	identity, err = f.svc.IdentityOf(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: f.aliceID, Username: "alice"}, identity)
}

func TestAuthService_Logout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupTestService(t)

	first, err := f.svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	require.NoError(t, f.svc.Logout(ctx, first.ID))

	_, err = f.svc.IdentityOf(ctx, first.ID)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	// Other sessions of the same user stay valid.
	identity, err := f.svc.IdentityOf(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, identity.IsAuthenticated())

	require.ErrorIs(t, f.svc.Logout(ctx, ""), domain.ErrUnauthenticated)
}

func TestAuthService_SessionExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setupTestService(t)

	sess, err := f.svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	f.now = f.now.Add(59 * time.Minute)

	_, err = f.svc.IdentityOf(ctx, sess.ID)
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)

	_, err = f.svc.IdentityOf(ctx, sess.ID)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestNewAuthService_FactoryError(t *testing.T) {
	t.Parallel()

	_, err := authsvc.NewAuthService(context.Background(), nil, session.NewRepositoryFactory(session.Config{Backend: "etcd"}))
	require.ErrorIs(t, err, session.ErrUnknownBackend)
}
