package setting

import (
	"net/http"

	"joyeria-be/internal/transport"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /settings?prefix=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	prefix := ""
	if p := transport.QueryString(r, "prefix"); p != nil {
		prefix = *p
	}

	items, err := h.svc.List(r.Context(), prefix)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	st, err := h.svc.Get(r.Context(), ps.ByName("key"))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var in Input
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	st, err := h.svc.Set(r.Context(), ps.ByName("key"), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.svc.Delete(r.Context(), ps.ByName("key")); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
