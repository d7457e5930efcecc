package category

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

// List handles GET /categories?search=&sort=name|created_at&order=&limit=&page=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	p := transport.ParsePagination(r)
	sort := transport.ParseSort(r, SortFields, DefaultSort)
	filter := ListFilter{Search: transport.QueryString(r, "search")}

	items, total, err := h.svc.List(r.Context(), filter, sort, p)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, transport.NewPage(items, total, p))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := transport.IDParam(ps, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in Input
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := transport.IDParam(ps, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var in Input
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	c, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, c)
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
