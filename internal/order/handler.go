package order

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

// Create handles POST /orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, r, apperr.ErrUnauthorized)
		return
	}

	var in CreateInput
	if err := transport.ReadJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, o)
}

// List handles GET /orders. Admins see every order and may filter by
// ?userId=; everyone else sees only their own.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		transport.WriteError(w, r, apperr.ErrUnauthorized)
		return
	}

	var filter ListFilter
	if s := transport.QueryString(r, "status"); s != nil {
		st := Status(*s)
		filter.Status = &st
	}

	if utils.IsAdmin(ctx) {
		uid, err := transport.QueryUint(r, "userId")
		if err != nil {
			transport.WriteError(w, r, err)
			return
		}
		filter.UserID = uid
	} else {
		filter.UserID = &userID
	}

	p := transport.ParsePagination(r)
	orders, total, err := h.svc.List(ctx, filter, p)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, transport.NewPage(orders, total, p))
}

// Get handles GET /orders/:id. Orders of other users read as not found.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		transport.WriteError(w, r, apperr.ErrUnauthorized)
		return
	}

	id, err := transport.IDParam(ps, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := h.svc.Get(ctx, id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	if o.UserID != userID && !utils.IsAdmin(ctx) {
		transport.WriteError(w, r, ErrOrderNotFound)
		return
	}
	transport.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := transport.IDParam(ps, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var in StatusInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := transport.IDParam(ps, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
