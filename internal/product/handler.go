package product

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

func parseFilter(r *http.Request) (ListFilter, error) {
	var (
		f   ListFilter
		err error
	)

	if f.CategoryID, err = transport.QueryUint(r, "categoryId"); err != nil {
		return f, err
	}
	if f.TagID, err = transport.QueryUint(r, "tagId"); err != nil {
		return f, err
	}
	if f.MinPrice, err = transport.QueryFloat(r, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = transport.QueryFloat(r, "maxPrice"); err != nil {
		return f, err
	}
	if f.InStock, err = transport.QueryBool(r, "inStock"); err != nil {
		return f, err
	}
	f.Search = transport.QueryString(r, "search")

	if a := transport.QueryString(r, "availability"); a != nil {
		v := AvailabilityType(*a)
		if v != AvailabilityStock && v != AvailabilityBackorder && v != AvailabilityBoth {
			return f, apperr.Validation("invalid availability")
		}
		f.Availability = &v
	}

	// Inactive products are only listed for admins who ask for them.
	if inc, err := transport.QueryBool(r, "includeInactive"); err != nil {
		return f, err
	} else if inc != nil && *inc && utils.IsAdmin(r.Context()) {
		f.IncludeInactive = true
	}

	return f, nil
}

// List handles GET /products with catalog filters, sort and pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := parseFilter(r)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	p := transport.ParsePagination(r)
	sort := transport.ParseSort(r, SortFields, DefaultSort)

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

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	if !p.IsActive && !utils.IsAdmin(r.Context()) {
		transport.WriteError(w, r, ErrProductNotFound)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in Input
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, p)
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

	p, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
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

// Rate handles POST /products/:id/ratings for the signed-in user.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, r, apperr.ErrUnauthorized)
		return
	}

	id, err := transport.IDParam(ps, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var in RatingInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	summary, err := h.svc.Rate(r.Context(), id, userID, in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, summary)
}
