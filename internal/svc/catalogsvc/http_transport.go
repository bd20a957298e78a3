package catalogsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mkrupp/shop/internal/domain"
	context_ "github.com/mkrupp/shop/internal/infra/context"
	"github.com/mkrupp/shop/internal/infra/logging"
	http_ "github.com/mkrupp/shop/internal/infra/transport/http"
)

const (
	msgProductAdded       = "Product added successfully!"
	msgProductUpdated     = "Product updated successfully!"
	msgProductDeleted     = "Product deleted successfully!"
	msgInvalidProductData = "Invalid product data"
)

// maxBodySize bounds product payloads.
const maxBodySize = 1 << 20

// HTTPTransport serves the catalog endpoints.
type HTTPTransport struct {
	catalogSvc *CatalogService
	gate       http_.Gate
	log        logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport. Mutating routes are wrapped by gate.
func NewHTTPTransport(catalogSvc *CatalogService, gate http_.Gate) *HTTPTransport {
	return &HTTPTransport{
		catalogSvc: catalogSvc,
		gate:       gate,
		log:        logging.GetLogger("svc.catalogsvc.http_transport"),
	}
}

// Register implements http_.Route:
// - POST /api/products/add: create a product (auth)
// - GET /api/products: list products
// - GET /api/products/{id}: get a product
// - PUT /api/products/update/{id}: partially update a product (auth)
// - DELETE /api/products/delete/{id}: delete a product (auth).
func (ht *HTTPTransport) Register(mux *http.ServeMux) {
	mux.Handle("POST /api/products/add", ht.gate.Require(ht.HandleAdd))
	mux.HandleFunc("GET /api/products", ht.HandleList)
	mux.HandleFunc("GET /api/products/{id}", ht.HandleGet)
	mux.Handle("PUT /api/products/update/{id}", ht.gate.Require(ht.HandleUpdate))
	mux.Handle("DELETE /api/products/delete/{id}", ht.gate.Require(ht.HandleDelete))
}

var _ http_.Route = (*HTTPTransport)(nil)

func (ht *HTTPTransport) logger(r *http.Request) logging.Logger {
	return ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))
}

func (ht *HTTPTransport) logResult(ctx context.Context, log logging.Logger, op string, err error) {
	if err != nil {
		log.DebugContext(ctx, op+" failed", logging.Err(err))
	} else {
		log.DebugContext(ctx, op+" served")
	}
}

func productID(r *http.Request) (domain.ProductID, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.Join(domain.ErrProductNotFound, fmt.Errorf("parse id: %w", err))
	}

	return id, nil
}

// HandleAdd creates a product from a JSON body {name, price, description?}.
func (ht *HTTPTransport) HandleAdd(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleAdd(w, r)
}

func (ht *HTTPTransport) handleAdd(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logger(r)

	defer func(ctx context.Context) { ht.logResult(ctx, log, "add product", err) }(r.Context())

	var input domain.NewProduct
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&input); err != nil {
		http_.WriteMessage(w, http.StatusBadRequest, msgInvalidProductData)

		return errors.Join(domain.ErrInvalidInput, fmt.Errorf("decode body: %w", err))
	}

	id, err := ht.catalogSvc.AddProduct(r.Context(), context_.IdentityFromContext(r.Context()), input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http_.WriteMessage(w, http.StatusBadRequest, msgInvalidProductData)
		} else {
			http_.WriteError(w, err)
		}

		return fmt.Errorf("add product: %w", err)
	}

	log = log.With(logging.Group("product", "id", id))

	if err := http_.WriteJSON(w, http.StatusCreated, domain.MessageResponse{Message: msgProductAdded}); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// HandleList returns all products as a JSON array.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logger(r)

	defer func(ctx context.Context) { ht.logResult(ctx, log, "list products", err) }(r.Context())

	products, err := ht.catalogSvc.ListProducts(r.Context())
	if err != nil {
		http_.WriteError(w, err)

		return fmt.Errorf("list products: %w", err)
	}

	if err := http_.WriteJSON(w, http.StatusOK, products); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// HandleGet returns one product as a JSON object.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleGet(w, r)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logger(r)

	defer func(ctx context.Context) { ht.logResult(ctx, log, "get product", err) }(r.Context())

	id, err := productID(r)
	if err != nil {
		http_.WriteError(w, err)

		return err
	}

	p, err := ht.catalogSvc.GetProduct(r.Context(), id)
	if err != nil {
		http_.WriteError(w, err)

		return fmt.Errorf("get product: %w", err)
	}

	if err := http_.WriteJSON(w, http.StatusOK, p); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// HandleUpdate applies the fields present in the JSON body to a product.
func (ht *HTTPTransport) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleUpdate(w, r)
}

func (ht *HTTPTransport) handleUpdate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logger(r)

	defer func(ctx context.Context) { ht.logResult(ctx, log, "update product", err) }(r.Context())

	id, err := productID(r)
	if err != nil {
		http_.WriteError(w, err)

		return err
	}

	patch, err := decodePatch(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http_.WriteMessage(w, http.StatusBadRequest, msgInvalidProductData)

		return err
	}

	if _, err := ht.catalogSvc.UpdateProduct(r.Context(), context_.IdentityFromContext(r.Context()), id, patch); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			http_.WriteMessage(w, http.StatusBadRequest, msgInvalidProductData)
		} else {
			http_.WriteError(w, err)
		}

		return fmt.Errorf("update product: %w", err)
	}

	if err := http_.WriteJSON(w, http.StatusOK, domain.MessageResponse{Message: msgProductUpdated}); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// HandleDelete removes a product.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDelete(w, r)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.logger(r)

	defer func(ctx context.Context) { ht.logResult(ctx, log, "delete product", err) }(r.Context())

	id, err := productID(r)
	if err != nil {
		http_.WriteError(w, err)

		return err
	}

	if err := ht.catalogSvc.DeleteProduct(r.Context(), context_.IdentityFromContext(r.Context()), id); err != nil {
		http_.WriteError(w, err)

		return fmt.Errorf("delete product: %w", err)
	}

	if err := http_.WriteJSON(w, http.StatusOK, domain.MessageResponse{Message: msgProductDeleted}); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

var jsonNull = []byte("null")

// decodePatch reads a partial product object. Only keys present in the body end up
// in the patch; "description": null clears the description, null name or price is invalid.
func decodePatch(body io.Reader) (domain.ProductPatch, error) {
	var (
		fields map[string]json.RawMessage
		patch  domain.ProductPatch
	)

	if err := json.NewDecoder(body).Decode(&fields); err != nil {
		return patch, errors.Join(domain.ErrInvalidInput, fmt.Errorf("decode body: %w", err))
	}

	if fields == nil {
		return patch, errors.Join(domain.ErrInvalidInput, errors.New("body must be an object"))
	}

	if raw, ok := fields["name"]; ok {
		if bytes.Equal(raw, jsonNull) {
			return patch, errors.Join(domain.ErrInvalidInput, errors.New("name must not be null"))
		}

		if err := json.Unmarshal(raw, &patch.Name); err != nil {
			return patch, errors.Join(domain.ErrInvalidInput, fmt.Errorf("decode name: %w", err))
		}
	}

	if raw, ok := fields["price"]; ok {
		if bytes.Equal(raw, jsonNull) {
			return patch, errors.Join(domain.ErrInvalidInput, errors.New("price must not be null"))
		}

		if err := json.Unmarshal(raw, &patch.Price); err != nil {
			return patch, errors.Join(domain.ErrInvalidInput, fmt.Errorf("decode price: %w", err))
		}
	}

	if raw, ok := fields["description"]; ok {
		patch.HasDescription = true

		if err := json.Unmarshal(raw, &patch.Description); err != nil {
			return patch, errors.Join(domain.ErrInvalidInput, fmt.Errorf("decode description: %w", err))
		}
	}

	return patch, nil
}
