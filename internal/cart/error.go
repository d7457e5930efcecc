package cart

import "joyeria-be/internal/apperr"

var (
	ErrCartItemNotFound   = apperr.New(apperr.ErrNotFound, "cart item not found")
	ErrProductNotFound    = apperr.New(apperr.ErrNotFound, "product not found")
	ErrProductUnavailable = apperr.New(apperr.ErrConflict, "product is not available")
)
