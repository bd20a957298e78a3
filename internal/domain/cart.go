package domain

import "errors"

var (
	// ErrItemNotInCart is returned when removing a product that is not in the user's cart.
	ErrItemNotInCart = errors.New("item not in cart")
	// ErrEmptyCart is returned when checking out a cart without items.
	ErrEmptyCart = errors.New("cart is empty")
)

// CartItem is one addition of a product to a user's cart.
// The same (UserID, ProductID) pair may occur several times.
type CartItem struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	ProductID ProductID `db:"product_id"`
}
