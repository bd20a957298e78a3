package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mkrupp/shop/internal/domain"
	"github.com/mkrupp/shop/internal/infra/logging"
)

// SQLiteCartRepository implements Repository on the cart_item table.
type SQLiteCartRepository struct {
	db  *sqlx.DB
	log logging.Logger
}

var _ Repository = (*SQLiteCartRepository)(nil)

// NewSQLiteCartRepository creates a repository on an opened database.
func NewSQLiteCartRepository(db *sqlx.DB) *SQLiteCartRepository {
	return &SQLiteCartRepository{
		db:  db,
		log: logging.GetLogger("repo.cart.sqlite_cart_repository"),
	}
}

// AddItem implements Repository.AddItem.
func (r *SQLiteCartRepository) AddItem(
	ctx context.Context,
	userID int64,
	productID domain.ProductID,
) (domain.CartItem, error) {
	item := domain.CartItem{UserID: userID, ProductID: productID}

	res, err := r.db.NamedExecContext(ctx,
		"INSERT INTO cart_item (user_id, product_id) VALUES (:user_id, :product_id)",
		item,
	)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("insert cart item: %w", err)
	}

	if item.ID, err = res.LastInsertId(); err != nil {
		return domain.CartItem{}, fmt.Errorf("last insert id: %w", err)
	}

	return item, nil
}

// RemoveItem implements Repository.RemoveItem.
// Of several matching rows the oldest one is removed.
func (r *SQLiteCartRepository) RemoveItem(ctx context.Context, userID int64, productID domain.ProductID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_item WHERE id = (
			SELECT id FROM cart_item
			WHERE user_id = ? AND product_id = ?
			ORDER BY id
			LIMIT 1
		)`,
		userID,
		productID,
	)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return domain.ErrItemNotInCart
	}

	return nil
}

// ListItems implements Repository.ListItems.
func (r *SQLiteCartRepository) ListItems(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	items := []domain.CartItem{}

	if err := r.db.SelectContext(ctx, &items,
		"SELECT id, user_id, product_id FROM cart_item WHERE user_id = ? ORDER BY id",
		userID,
	); err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}

	return items, nil
}

// ClearItems implements Repository.ClearItems.
func (r *SQLiteCartRepository) ClearItems(ctx context.Context, userID int64) (_ int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.log.ErrorContext(ctx, "rollback failed", logging.Err(rbErr))
		}
	}()

	res, err := tx.ExecContext(ctx, "DELETE FROM cart_item WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("delete cart items: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return n, nil
}
