package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product id does not match any product.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidInput is returned when a request payload is malformed or misses required fields.
	ErrInvalidInput = errors.New("invalid input")
)

// ProductID identifies a product. Ids are generated by the store.
type ProductID = int64

// Product is an entry of the catalog.
type Product struct {
	ID          ProductID `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Price       float64   `db:"price"       json:"price"`
	Description *string   `db:"description" json:"description"`
}

// NewProduct holds the fields of a product to be created.
// Name and Price are pointers so that absent fields can be told apart from zero values.
type NewProduct struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
}

// Validate checks that name and price are present and sane.
func (p NewProduct) Validate() error {
	switch {
	case p.Name == nil || *p.Name == "":
		return errors.Join(ErrInvalidInput, errors.New("name is required"))
	case p.Price == nil:
		return errors.Join(ErrInvalidInput, errors.New("price is required"))
	case *p.Price < 0:
		return errors.Join(ErrInvalidInput, errors.New("price must not be negative"))
	}

	return nil
}

// Product returns the product to insert. The id is left for the store to assign.
func (p NewProduct) Product() Product {
	return Product{
		Name:        *p.Name,
		Price:       *p.Price,
		Description: p.Description,
	}
}

// ProductPatch holds the fields of a partial product update. Nil fields are left unchanged.
// Description distinguishes "absent" (HasDescription false) from "set to null".
type ProductPatch struct {
	Name           *string
	Price          *float64
	Description    *string
	HasDescription bool
}

// Validate checks the supplied fields.
func (p ProductPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return errors.Join(ErrInvalidInput, errors.New("name must not be empty"))
	}

	if p.Price != nil && *p.Price < 0 {
		return errors.Join(ErrInvalidInput, errors.New("price must not be negative"))
	}

	return nil
}

// Apply returns a copy of the product with the supplied fields replaced.
func (p ProductPatch) Apply(product Product) Product {
	if p.Name != nil {
		product.Name = *p.Name
	}

	if p.Price != nil {
		product.Price = *p.Price
	}

	if p.HasDescription {
		product.Description = p.Description
	}

	return product
}
