package user

import "joyeria-be/internal/apperr"

var (
	ErrUserNotFound         = apperr.New(apperr.ErrNotFound, "user not found")
	ErrEmailExists          = apperr.New(apperr.ErrConflict, "email already registered")
	ErrInvalidCredentials   = apperr.New(apperr.ErrUnauthorized, "invalid email or password")
	ErrInvalidRefreshToken  = apperr.New(apperr.ErrUnauthorized, "invalid or expired refresh token")
	ErrInvalidRole          = apperr.Validation("invalid role")
	ErrCannotDeleteYourself = apperr.New(apperr.ErrConflict, "admins cannot delete their own account")
)
