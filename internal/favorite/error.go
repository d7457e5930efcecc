package favorite

import "joyeria-be/internal/apperr"

var (
	ErrFavoriteNotFound = apperr.New(apperr.ErrNotFound, "favorite not found")
	ErrProductNotFound  = apperr.New(apperr.ErrNotFound, "product not found")
)
