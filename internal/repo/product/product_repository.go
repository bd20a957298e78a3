package product

import (
	"context"

	"github.com/mkrupp/shop/internal/domain"
)

// Repository defines the interface for catalog persistence.
type Repository interface {
	// CreateProduct inserts a product and returns its generated id.
	CreateProduct(ctx context.Context, product domain.Product) (domain.ProductID, error)

	// ListProducts returns every product in insertion order.
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// GetProduct returns the product with the given id.
	// Returns domain.ErrProductNotFound if there is none.
	GetProduct(ctx context.Context, id domain.ProductID) (domain.Product, error)

	// UpdateProduct overwrites all fields of an existing product.
	// Returns domain.ErrProductNotFound if there is none.
	UpdateProduct(ctx context.Context, product domain.Product) error

	// DeleteProduct removes the product with the given id. Cart items referencing it are kept.
	// Returns domain.ErrProductNotFound if there is none.
	DeleteProduct(ctx context.Context, id domain.ProductID) error
}
