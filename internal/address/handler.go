package address

import (
	"net/http"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func currentUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, r, apperr.ErrUnauthorized)
	}
	return id, ok
}

func addressID(ps httprouter.Params) (uuid.UUID, error) {
	id, err := uuid.Parse(ps.ByName("id"))
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	items, err := h.svc.List(r.Context(), userID)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := addressID(ps)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	a, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var in Input
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	a, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := addressID(ps)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var in Input
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	a, err := h.svc.Update(r.Context(), userID, id, in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := addressID(ps)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetDefault handles PUT /addresses/:id/default.
func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := addressID(ps)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	a, err := h.svc.SetDefault(r.Context(), userID, id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, a)
}
