package user_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/shop/internal/domain"
	"github.com/mkrupp/shop/internal/infra/database"
	"github.com/mkrupp/shop/internal/repo/user"
)

func setupRepo(t *testing.T) *user.SQLiteUserRepository {
	t.Helper()

	db, err := database.Open(context.Background(), database.Config{
		Path:        filepath.Join(t.TempDir(), "shop.db"),
		BusyTimeout: 1000,
		Migrate:     true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return user.NewSQLiteUserRepository(db)
}

func TestSQLiteUserRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := setupRepo(t)

	id, err := repo.CreateUser(ctx, "alice", "pw1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		want     domain.User
		wantErr  error
	}{
		{
			name:     "existing user",
			username: "alice",
			want:     domain.User{ID: id, Username: "alice", Password: "pw1"},
		},
		{
			name:     "lookup is case sensitive",
			username: "Alice",
			wantErr:  domain.ErrUserNotFound,
		},
		{
			name:     "unknown user",
			username: "bob",
			wantErr:  domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := repo.GetUserByUsername(ctx, tt.username)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteUserRepository_DuplicateUsername(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := setupRepo(t)

	_, err := repo.CreateUser(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "alice", "other")
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}
