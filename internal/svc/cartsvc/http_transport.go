package cartsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mkrupp/shop/internal/domain"
	context_ "github.com/mkrupp/shop/internal/infra/context"
	"github.com/mkrupp/shop/internal/infra/logging"
	http_ "github.com/mkrupp/shop/internal/infra/transport/http"
)

const (
	msgAddedToCart     = "Product added to cart!"
	msgRemovedFromCart = "Product removed from cart!"
	msgCheckout        = "Checkout successful!"
)

// HTTPTransport serves the cart endpoints. Every route requires a session.
type HTTPTransport struct {
	cartSvc *CartService
	gate    http_.Gate
	log     logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport. All routes are wrapped by gate.
func NewHTTPTransport(cartSvc *CartService, gate http_.Gate) *HTTPTransport {
	return &HTTPTransport{
		cartSvc: cartSvc,
		gate:    gate,
		log:     logging.GetLogger("svc.cartsvc.http_transport"),
	}
}

// Register implements http_.Route:
// - POST /api/cart/add/{productId}: add one unit of a product
// - DELETE /api/cart/remove/{productId}: remove one unit of a product
// - GET /api/cart: list the products in the cart
// - POST /api/cart/checkout: empty the cart.
func (ht *HTTPTransport) Register(mux *http.ServeMux) {
	mux.Handle("POST /api/cart/add/{productId}", ht.gate.Require(ht.HandleAdd))
	mux.Handle("DELETE /api/cart/remove/{productId}", ht.gate.Require(ht.HandleRemove))
	mux.Handle("GET /api/cart", ht.gate.Require(ht.HandleView))
	mux.Handle("POST /api/cart/checkout", ht.gate.Require(ht.HandleCheckout))
}

var _ http_.Route = (*HTTPTransport)(nil)

func (ht *HTTPTransport) logger(r *http.Request) logging.Logger {
	return ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))
}

func productID(r *http.Request) (domain.ProductID, error) {
	id, err := strconv.ParseInt(r.PathValue("productId"), 10, 64)
	if err != nil {
		return 0, errors.Join(domain.ErrProductNotFound, fmt.Errorf("parse product id: %w", err))
	}

	return id, nil
}

func (ht *HTTPTransport) logResult(ctx context.Context, log logging.Logger, op string, err error) {
	if err != nil {
		log.DebugContext(ctx, op+" failed", logging.Err(err))
	} else {
		log.DebugContext(ctx, op+" served")
	}
}

// HandleAdd adds one unit of the product in the path to the caller's cart.
func (ht *HTTPTransport) HandleAdd(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleAdd(w, r)
}

func (ht *HTTPTransport) handleAdd(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logger(r)

	defer func(ctx context.Context) { ht.logResult(ctx, log, "add to cart", err) }(r.Context())

	id, err := productID(r)
	if err != nil {
		http_.WriteError(w, err)

		return err
	}

	if err := ht.cartSvc.AddToCart(r.Context(), context_.IdentityFromContext(r.Context()), id); err != nil {
		http_.WriteError(w, err)

		return fmt.Errorf("add to cart: %w", err)
	}

	http_.WriteMessage(w, http.StatusOK, msgAddedToCart)

	return nil
}

// HandleRemove removes one unit of the product in the path from the caller's cart.
func (ht *HTTPTransport) HandleRemove(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRemove(w, r)
}

func (ht *HTTPTransport) handleRemove(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logger(r)

	defer func(ctx context.Context) { ht.logResult(ctx, log, "remove from cart", err) }(r.Context())

	id, err := productID(r)
	if err != nil {
		// A product id that cannot exist cannot be in the cart either.
		err = errors.Join(domain.ErrItemNotInCart, err)
		http_.WriteMessage(w, http.StatusNotFound, http_.Message(domain.ErrItemNotInCart))

		return err
	}

	if err := ht.cartSvc.RemoveFromCart(r.Context(), context_.IdentityFromContext(r.Context()), id); err != nil {
		http_.WriteError(w, err)

		return fmt.Errorf("remove from cart: %w", err)
	}

	http_.WriteMessage(w, http.StatusOK, msgRemovedFromCart)

	return nil
}

// HandleView returns the products in the caller's cart as a JSON array.
func (ht *HTTPTransport) HandleView(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleView(w, r)
}

func (ht *HTTPTransport) handleView(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logger(r)

	defer func(ctx context.Context) { ht.logResult(ctx, log, "view cart", err) }(r.Context())

	products, err := ht.cartSvc.ViewCart(r.Context(), context_.IdentityFromContext(r.Context()))
	if err != nil {
		http_.WriteError(w, err)

		return fmt.Errorf("view cart: %w", err)
	}

	if err := http_.WriteJSON(w, http.StatusOK, products); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// HandleCheckout empties the caller's cart.
func (ht *HTTPTransport) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleCheckout(w, r)
}

func (ht *HTTPTransport) handleCheckout(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logger(r)

	defer func(ctx context.Context) { ht.logResult(ctx, log, "checkout", err) }(r.Context())

	if err := ht.cartSvc.Checkout(r.Context(), context_.IdentityFromContext(r.Context())); err != nil {
		http_.WriteError(w, err)

		return fmt.Errorf("checkout: %w", err)
	}

	http_.WriteMessage(w, http.StatusOK, msgCheckout)

	return nil
}
