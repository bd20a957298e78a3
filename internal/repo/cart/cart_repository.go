package cart

import (
	"context"

	"github.com/mkrupp/shop/internal/domain"
)

// Repository defines the interface for cart line item persistence.
// Every method is scoped to one user.
type Repository interface {
	// AddItem appends one line item for (userID, productID). Duplicates get their own rows.
	AddItem(ctx context.Context, userID int64, productID domain.ProductID) (domain.CartItem, error)

	// RemoveItem deletes a single line item matching (userID, productID).
	// Returns domain.ErrItemNotInCart if none matches.
	RemoveItem(ctx context.Context, userID int64, productID domain.ProductID) error

	// ListItems returns the user's line items in the order they were added.
	ListItems(ctx context.Context, userID int64) ([]domain.CartItem, error)

	// ClearItems deletes all of the user's line items in one transaction
	// and returns how many were removed.
	ClearItems(ctx context.Context, userID int64) (int64, error)
}
