package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"joyeria-be/internal/auth"
	"joyeria-be/internal/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(svc Service) *httprouter.Router {
	h := NewHandler(svc, false)
	r := httprouter.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/me", h.Me)
	r.GET("/users", h.List)
	r.GET("/users/:id", h.Get)
	r.DELETE("/users/:id", h.Delete)
	return r
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHandler_AuthFlow(t *testing.T) {
	svc, _ := newTestService()
	router := newRouter(svc)

	// register
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","password":"s3cret-pass"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var res AuthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "ana@example.com", res.User.Email)
	assert.NotContains(t, rec.Body.String(), "password")

	refresh := cookie(rec, auth.RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.True(t, refresh.HttpOnly)
	require.NotNil(t, cookie(rec, auth.AccessTokenCookie))

	// duplicate
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","password":"s3cret-pass"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// refresh via cookie
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(refresh)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := cookie(rec, auth.RefreshTokenCookie)
	require.NotNil(t, rotated)
	assert.NotEqual(t, refresh.Value, rotated.Value)

	// replaying the old token fails
	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(refresh)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// refresh via body
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/refresh",
		strings.NewReader(`{"refreshToken":"`+rotated.Value+`"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))

	// logout
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout",
		strings.NewReader(`{"refreshToken":"`+res.Tokens.RefreshToken+`"}`)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	cleared := cookie(rec, auth.AccessTokenCookie)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestHandler_Login(t *testing.T) {
	svc, _ := newTestService()
	router := newRouter(svc)
	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ana@example.com","password":"wrong-pass"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid email or password"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ana@example.com","password":"s3cret-pass"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Me(t *testing.T) {
	svc, _ := newTestService()
	router := newRouter(svc)
	reg, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), reg.User.ID, reg.User.Email, "USER"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ana@example.com"`)
}

func TestHandler_AdminUsers(t *testing.T) {
	svc, _ := newTestService()
	router := newRouter(svc)
	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	asAdmin := func(req *http.Request) *http.Request {
		return req.WithContext(utils.SetUserContext(req.Context(), 99, "admin@example.com", utils.RoleAdmin))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/users", nil)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/users?role=ROOT", nil)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodDelete, "/users/99", nil)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodDelete, "/users/1", nil)))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodGet, "/users/1", nil)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
