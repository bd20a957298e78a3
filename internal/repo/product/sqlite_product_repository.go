package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mkrupp/shop/internal/domain"
	"github.com/mkrupp/shop/internal/infra/logging"
)

// SQLiteProductRepository implements Repository on the product table.
type SQLiteProductRepository struct {
	db  *sqlx.DB
	log logging.Logger
}

var _ Repository = (*SQLiteProductRepository)(nil)

// NewSQLiteProductRepository creates a repository on an opened database.
func NewSQLiteProductRepository(db *sqlx.DB) *SQLiteProductRepository {
	return &SQLiteProductRepository{
		db:  db,
		log: logging.GetLogger("repo.product.sqlite_product_repository"),
	}
}

// CreateProduct implements Repository.CreateProduct.
func (r *SQLiteProductRepository) CreateProduct(ctx context.Context, product domain.Product) (domain.ProductID, error) {
	res, err := r.db.NamedExecContext(ctx,
		"INSERT INTO product (name, price, description) VALUES (:name, :price, :description)",
		product,
	)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	r.log.DebugContext(ctx, "product inserted", "id", id)

	return id, nil
}

// ListProducts implements Repository.ListProducts.
func (r *SQLiteProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}

	if err := r.db.SelectContext(ctx, &products,
		"SELECT id, name, price, description FROM product ORDER BY id",
	); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	return products, nil
}

// GetProduct implements Repository.GetProduct.
func (r *SQLiteProductRepository) GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error) {
	var product domain.Product

	if err := r.db.GetContext(ctx, &product,
		"SELECT id, name, price, description FROM product WHERE id = ?",
		id,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrProductNotFound, err)
		}

		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}

	return product, nil
}

// UpdateProduct implements Repository.UpdateProduct.
func (r *SQLiteProductRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	res, err := r.db.NamedExecContext(ctx,
		"UPDATE product SET name = :name, price = :price, description = :description WHERE id = :id",
		product,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	return expectAffected(res)
}

// DeleteProduct implements Repository.DeleteProduct.
func (r *SQLiteProductRepository) DeleteProduct(ctx context.Context, id domain.ProductID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM product WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}
