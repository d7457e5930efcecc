package product

import "joyeria-be/internal/apperr"

var (
	ErrProductNotFound  = apperr.New(apperr.ErrNotFound, "product not found")
	ErrSlugTaken        = apperr.New(apperr.ErrConflict, "product slug already exists")
	ErrUnknownReference = apperr.Validation("category or tag does not exist")
	ErrInvalidPrice     = apperr.Validation("minPrice must not exceed maxPrice")
)
