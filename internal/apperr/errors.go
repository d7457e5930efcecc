// Package apperr holds the error kinds shared by every domain package.
// Domain sentinels wrap one of these so the HTTP layer can pick a status code
// with errors.Is without knowing the domain.
package apperr

import (
	"errors"
	"net/http"

	"github.com/lib/pq"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// PgUniqueViolation is the SQLSTATE postgres returns for duplicate keys.
const PgUniqueViolation = "23505"

// PgForeignKeyViolation is returned when a referenced row does not exist.
const PgForeignKeyViolation = "23503"

// IsUniqueViolation reports whether err is a postgres duplicate key error.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == PgUniqueViolation
}

// IsForeignKeyViolation reports whether err is a postgres foreign key error.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == PgForeignKeyViolation
}

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// Status maps an error to the HTTP status code the API answers with.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// New returns an error printing msg that matches kind under errors.Is.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Validation wraps a message as a validation error.
func Validation(msg string) error {
	return New(ErrValidation, msg)
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }
