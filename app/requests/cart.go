package requests

// AddToCart is the body of POST /add_to_cart.
type AddToCart struct {
	ProductID ProductID `json:"product_id" validate:"required"`
}

// RemoveFromCart is the body of POST /remove_from_cart.
type RemoveFromCart struct {
	ProductID ProductID `json:"product_id" validate:"required"`
}

// UpdateQuantity is the body of POST /update_quantity. A missing quantity
// means 1; zero or negative removes the line.
type UpdateQuantity struct {
	ProductID ProductID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"lte=10000"`
}

// NewUpdateQuantity returns the request with its default quantity.
func NewUpdateQuantity() UpdateQuantity {
	return UpdateQuantity{Quantity: 1}
}
