package order

import "joyeria-be/internal/apperr"

var (
	ErrOrderNotFound      = apperr.New(apperr.ErrNotFound, "order not found")
	ErrProductNotFound    = apperr.New(apperr.ErrNotFound, "product not found")
	ErrEmptyOrder         = apperr.Validation("order has no items")
	ErrInvalidStatus      = apperr.Validation("invalid order status")
	ErrInvalidTransition  = apperr.New(apperr.ErrConflict, "order status transition not allowed")
	ErrStatusChanged      = apperr.New(apperr.ErrConflict, "order status was changed concurrently")
	ErrProductUnavailable = apperr.New(apperr.ErrConflict, "product is not available")
	ErrInsufficientStock  = apperr.New(apperr.ErrConflict, "insufficient stock")
)
