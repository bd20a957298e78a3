package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/shop/internal/domain"
	"github.com/mkrupp/shop/internal/infra/logging"
)

// SQLiteUserRepository implements Repository on the user table.
type SQLiteUserRepository struct {
	db  *sqlx.DB
	log logging.Logger
}

var _ Repository = (*SQLiteUserRepository)(nil)

// NewSQLiteUserRepository creates a repository on an opened database.
func NewSQLiteUserRepository(db *sqlx.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{
		db:  db,
		log: logging.GetLogger("repo.user.sqlite_user_repository"),
	}
}

// CreateUser implements Repository.CreateUser.
func (r *SQLiteUserRepository) CreateUser(ctx context.Context, username, password string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO user (username, password) VALUES (?, ?)",
		username,
		password,
	)
	if err != nil {
		var liteErr *sqlite.Error
		if errors.As(err, &liteErr) {
			switch liteErr.Code() {
			case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
				fallthrough
			case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
				err = errors.Join(domain.ErrUserAlreadyExists, err)
			default:
				break
			}
		}

		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	r.log.DebugContext(ctx, "user inserted", logging.Group("user", "id", id, "username", username))

	return id, nil
}

// GetUserByUsername implements Repository.GetUserByUsername.
func (r *SQLiteUserRepository) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var user domain.User

	if err := r.db.GetContext(ctx, &user,
		"SELECT id, username, password FROM user WHERE username = ?",
		username,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return domain.User{}, fmt.Errorf("query user: %w", err)
	}

	return user, nil
}
