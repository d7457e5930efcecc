package user

import (
	"net/http"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/auth"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc           Service
	secureCookies bool
}

// NewHandler builds the auth and user handlers. secureCookies marks the token
// cookies Secure and should be on outside local development.
func NewHandler(svc Service, secureCookies bool) *Handler {
	return &Handler{svc: svc, secureCookies: secureCookies}
}

/* ---------- AUTH ---------- */

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in RegisterInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Register(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	auth.SetTokenCookies(w, res.Tokens, h.secureCookies)
	transport.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in LoginInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	res, err := h.svc.Login(r.Context(), in)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	auth.SetTokenCookies(w, res.Tokens, h.secureCookies)
	transport.WriteJSON(w, http.StatusOK, res)
}

// refreshToken prefers the cookie and falls back to a JSON body.
func refreshToken(w http.ResponseWriter, r *http.Request) string {
	if token := auth.ExtractRefreshToken(r); token != "" {
		return token
	}
	if r.ContentLength == 0 {
		return ""
	}
	var in RefreshInput
	if err := transport.ReadJSON(w, r, &in); err != nil {
		return ""
	}
	return in.RefreshToken
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res, err := h.svc.Refresh(r.Context(), refreshToken(w, r))
	if err != nil {
		if apperr.Status(err) == http.StatusUnauthorized {
			auth.ClearTokenCookies(w)
		}
		transport.WriteError(w, r, err)
		return
	}

	auth.SetTokenCookies(w, res.Tokens, h.secureCookies)
	transport.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.svc.Logout(r.Context(), refreshToken(w, r)); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	auth.ClearTokenCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.WriteError(w, r, apperr.ErrUnauthorized)
		return
	}

	u, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, u)
}

/* ---------- ADMIN ---------- */

func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := ListFilter{Search: transport.QueryString(r, "search")}
	if role := transport.QueryString(r, "role"); role != nil {
		rl := Role(*role)
		filter.Role = &rl
	}

	p := transport.ParsePagination(r)
	users, total, err := h.svc.List(r.Context(), filter, transport.ParseSort(r, SortFields, DefaultSort), p)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, transport.NewPage(users, total, p))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := transport.IDParam(ps, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := transport.IDParam(ps, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	actorID, _ := utils.GetUserIDFromContext(r.Context())
	if err := h.svc.Delete(r.Context(), actorID, id); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
