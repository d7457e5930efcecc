package favorite

import (
	"net/http"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

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

func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	p := transport.ParsePagination(r)
	favs, total, err := h.svc.List(r.Context(), userID, p)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, transport.NewPage(favs, total, p))
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var in AddInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	f, err := h.svc.Add(r.Context(), userID, in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, f)
}

// Remove handles DELETE /favorites/:productId.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	productID, err := transport.IDParam(ps, "productId")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	if err := h.svc.Remove(r.Context(), userID, productID); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
