package setting

import "joyeria-be/internal/apperr"

var (
	ErrSettingNotFound = apperr.New(apperr.ErrNotFound, "setting not found")
	ErrInvalidKey      = apperr.Validation("key must be 1-100 characters of a-z, 0-9, '.', '_' or '-'")
)
