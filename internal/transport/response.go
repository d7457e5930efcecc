package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/logger"

	"go.uber.org/zap"
)

type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes payload with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L().Warn("failed to encode response", zap.Error(err))
	}
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, errorBody{Error: message})
}

// WriteError maps err to a status code. Internal errors are logged and
// answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		WriteJSONError(w, http.StatusText(status), status)
		return
	}

	WriteJSONError(w, err.Error(), status)
}

// Page wraps list responses.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Limit int `json:"limit"`
	Page  int `json:"page"`
}

func NewPage[T any](items []T, total int, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Limit: p.Limit, Page: p.Page}
}

// IsNotFound is a shorthand used by handlers that treat absence specially.
func IsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
