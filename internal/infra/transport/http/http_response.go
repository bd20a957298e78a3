package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkrupp/shop/internal/domain"
)

// StatusCode maps domain errors to HTTP status codes. Unknown errors are 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrItemNotInCart):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for a domain error.
// Internal errors are not exposed.
func Message(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "Invalid input"
	case errors.Is(err, domain.ErrEmptyCart):
		return "Cart is empty"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, domain.ErrProductNotFound):
		return "Product not found"
	case errors.Is(err, domain.ErrItemNotInCart):
		return "Item not in cart"
	default:
		return http.StatusText(http.StatusInternalServerError)
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	//nolint:wrapcheck
	return json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"message": msg} with the given status.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	_ = WriteJSON(w, status, domain.MessageResponse{Message: msg})
}

// WriteError writes the status and message for err.
func WriteError(w http.ResponseWriter, err error) {
	WriteMessage(w, StatusCode(err), Message(err))
}
