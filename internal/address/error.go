package address

import "joyeria-be/internal/apperr"

var (
	ErrAddressNotFound = apperr.New(apperr.ErrNotFound, "address not found")
	ErrInvalidID       = apperr.Validation("invalid address id")
)
