package cart

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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	v, err := h.svc.GetCart(r.Context(), userID)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, v)
}

// AddItem handles POST /cart/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var in AddItemInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	v, err := h.svc.AddItem(r.Context(), userID, in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, v)
}

// UpdateItem handles PUT /cart/items/:id.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	itemID, err := transport.IDParam(ps, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var in UpdateItemInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	v, err := h.svc.UpdateItem(r.Context(), userID, itemID, in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	itemID, err := transport.IDParam(ps, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	v, err := h.svc.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	v, err := h.svc.Clear(r.Context(), userID)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, v)
}
