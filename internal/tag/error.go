package tag

import "joyeria-be/internal/apperr"

var (
	ErrTagNotFound = apperr.New(apperr.ErrNotFound, "tag not found")
	ErrTagExists   = apperr.New(apperr.ErrConflict, "tag already exists")
)
