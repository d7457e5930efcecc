package category

import "joyeria-be/internal/apperr"

var (
	ErrCategoryNotFound = apperr.New(apperr.ErrNotFound, "category not found")
	ErrCategoryExists   = apperr.New(apperr.ErrConflict, "category already exists")
)
