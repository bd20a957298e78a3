package cartsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkrupp/shop/internal/domain"
	"github.com/mkrupp/shop/internal/infra/logging"
	"github.com/mkrupp/shop/internal/repo/cart"
	"github.com/mkrupp/shop/internal/repo/product"
)

// CartService manages per-user carts. A cart is a multiset of product references;
// checkout empties it without recording an order.
type CartService struct {
	CartRepo    cart.Repository
	ProductRepo product.Repository
	Log         logging.Logger
}

// NewCartService creates a new CartService on the given repositories.
func NewCartService(cartRepo cart.Repository, productRepo product.Repository) *CartService {
	return &CartService{
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
		Log:         logging.GetLogger("svc.cartsvc.cart_service"),
	}
}

func (s *CartService) logger(identity domain.Identity) logging.Logger {
	return s.Log.With(logging.Group("user", "id", identity.UserID))
}

func logResult(ctx context.Context, log logging.Logger, op string, err error) {
	switch {
	case err == nil:
		log.DebugContext(ctx, op+" succeeded")
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrItemNotInCart),
		errors.Is(err, domain.ErrEmptyCart):
		log.WarnContext(ctx, op+" rejected", logging.Err(err))
	default:
		log.ErrorContext(ctx, op+" failed", logging.Err(err))
	}
}

// AddToCart appends one line item for the product. The product must exist;
// adding the same product again creates another line item.
func (s *CartService) AddToCart(ctx context.Context, identity domain.Identity, productID domain.ProductID) (err error) {
	log := s.logger(identity).With(logging.Group("product", "id", productID))

	defer func() { logResult(ctx, log, "add to cart", err) }()

	if err := identity.Require(); err != nil {
		return err
	}

	if _, err := s.ProductRepo.GetProduct(ctx, productID); err != nil {
		return fmt.Errorf("get product: %w", err)
	}

	item, err := s.CartRepo.AddItem(ctx, identity.UserID, productID)
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}

	log = log.With(logging.Group("cart_item", "id", item.ID))

	return nil
}

// RemoveFromCart removes a single line item for the product.
// Returns domain.ErrItemNotInCart if the cart holds none.
func (s *CartService) RemoveFromCart(ctx context.Context, identity domain.Identity, productID domain.ProductID) (err error) {
	log := s.logger(identity).With(logging.Group("product", "id", productID))

	defer func() { logResult(ctx, log, "remove from cart", err) }()

	if err := identity.Require(); err != nil {
		return err
	}

	if err := s.CartRepo.RemoveItem(ctx, identity.UserID, productID); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}

	return nil
}

// ViewCart returns the product of every line item in the order they were added.
// Products are read at call time; line items whose product no longer exists are skipped.
func (s *CartService) ViewCart(ctx context.Context, identity domain.Identity) (_ []domain.Product, err error) {
	log := s.logger(identity)

	defer func() { logResult(ctx, log, "view cart", err) }()

	if err := identity.Require(); err != nil {
		return nil, err
	}

	items, err := s.CartRepo.ListItems(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	products := make([]domain.Product, 0, len(items))

	for _, item := range items {
		p, err := s.ProductRepo.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				log.DebugContext(ctx, "skipping dangling cart item",
					logging.Group("cart_item", "id", item.ID, "product_id", item.ProductID))

				continue
			}

			return nil, fmt.Errorf("get product: %w", err)
		}

		products = append(products, p)
	}

	return products, nil
}

// Checkout empties the cart in one transaction. No payment is taken and no order is kept.
// Returns domain.ErrEmptyCart if there was nothing to remove, which includes losing
// a race against a concurrent checkout of the same cart.
func (s *CartService) Checkout(ctx context.Context, identity domain.Identity) (err error) {
	log := s.logger(identity)

	defer func() { logResult(ctx, log, "checkout", err) }()

	if err := identity.Require(); err != nil {
		return err
	}

	n, err := s.CartRepo.ClearItems(ctx, identity.UserID)
	if err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	if n == 0 {
		return domain.ErrEmptyCart
	}

	log = log.With("items", n)

	return nil
}
