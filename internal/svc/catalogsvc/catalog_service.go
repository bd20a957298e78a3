package catalogsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/shop/internal/domain"
	"github.com/mkrupp/shop/internal/infra/logging"
	"github.com/mkrupp/shop/internal/repo/product"
)

// CatalogService manages the product catalog. Reads are public;
// mutations require an authenticated identity.
type CatalogService struct {
	ProductRepo product.Repository
	Log         logging.Logger
}

// NewCatalogService creates a new CatalogService on the given repository.
func NewCatalogService(productRepo product.Repository) *CatalogService {
	return &CatalogService{
		ProductRepo: productRepo,
		Log:         logging.GetLogger("svc.catalogsvc.catalog_service"),
	}
}

func (s *CatalogService) logResult(ctx context.Context, log logging.Logger, op string, err error) {
	switch {
	case err == nil:
		log.DebugContext(ctx, op+" succeeded")
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrProductNotFound):
		log.WarnContext(ctx, op+" rejected", logging.Err(err))
	default:
		log.ErrorContext(ctx, op+" failed", logging.Err(err))
	}
}

// AddProduct creates a product and returns its generated id.
func (s *CatalogService) AddProduct(
	ctx context.Context,
	identity domain.Identity,
	input domain.NewProduct,
) (id domain.ProductID, err error) {
	log := s.Log

	defer func() { s.logResult(ctx, log, "add product", err) }()

	if err := identity.Require(); err != nil {
		return 0, err
	}

	if err := input.Validate(); err != nil {
		return 0, err
	}

	id, err = s.ProductRepo.CreateProduct(ctx, input.Product())
	if err != nil {
		return 0, fmt.Errorf("create product: %w", err)
	}

	log = log.With(logging.Group("product", "id", id))

	return id, nil
}

// ListProducts returns every product. No identity is required.
func (s *CatalogService) ListProducts(ctx context.Context) (_ []domain.Product, err error) {
	defer func() { s.logResult(ctx, s.Log, "list products", err) }()

	products, err := s.ProductRepo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

// GetProduct returns one product. No identity is required.
func (s *CatalogService) GetProduct(ctx context.Context, id domain.ProductID) (_ domain.Product, err error) {
	defer func() { s.logResult(ctx, s.Log.With(logging.Group("product", "id", id)), "get product", err) }()

	p, err := s.ProductRepo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}

	return p, nil
}

// UpdateProduct applies the supplied fields of patch to an existing product
// and returns the stored result. Fields absent from the patch are left untouched.
func (s *CatalogService) UpdateProduct(
	ctx context.Context,
	identity domain.Identity,
	id domain.ProductID,
	patch domain.ProductPatch,
) (_ domain.Product, err error) {
	defer func() { s.logResult(ctx, s.Log.With(logging.Group("product", "id", id)), "update product", err) }()

	if err := identity.Require(); err != nil {
		return domain.Product{}, err
	}

	current, err := s.ProductRepo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}

	if err := patch.Validate(); err != nil {
		return domain.Product{}, err
	}

	updated := patch.Apply(current)

	if err := s.ProductRepo.UpdateProduct(ctx, updated); err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}

	return updated, nil
}

// DeleteProduct removes a product. Cart items that still reference it are left
// in place and skipped when carts are read.
func (s *CatalogService) DeleteProduct(ctx context.Context, identity domain.Identity, id domain.ProductID) (err error) {
	defer func() { s.logResult(ctx, s.Log.With(logging.Group("product", "id", id)), "delete product", err) }()

	if err := identity.Require(); err != nil {
		return err
	}

	if err := s.ProductRepo.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	return nil
}
