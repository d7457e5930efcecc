package cart

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"joyeria-be/internal/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(svc Service) *httprouter.Router {
	h := NewHandler(svc)
	r := httprouter.New()
	r.GET("/cart", h.Get)
	r.DELETE("/cart", h.Clear)
	r.POST("/cart/items", h.AddItem)
	r.PUT("/cart/items/:id", h.UpdateItem)
	r.DELETE("/cart/items/:id", h.RemoveItem)
	return r
}

func asUser(req *http.Request, id uint) *http.Request {
	return req.WithContext(utils.SetUserContext(req.Context(), id, "u@x.y", "USER"))
}

func TestHandler_RequiresUser(t *testing.T) {
	svc, _ := newTestService()
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Flow(t *testing.T) {
	svc, _ := newTestService()
	router := newRouter(svc)

	do := func(method, path, body string) (*httptest.ResponseRecorder, View) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, asUser(httptest.NewRequest(method, path, strings.NewReader(body)), 1))
		var v View
		if rec.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
		}
		return rec, v
	}

	rec, v := do(http.MethodPost, "/cart/items", `{"productId":10,"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 160.0, v.Total)

	rec, _ = do(http.MethodPost, "/cart/items", `{"productId":10,"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(http.MethodPost, "/cart/items", `{"productId":404,"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	itemPath := "/cart/items/" + jsonID(v.Items[0].ID)
	rec, v = do(http.MethodPut, itemPath, `{"quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, v.ItemCount)

	rec, _ = do(http.MethodPut, "/cart/items/999", `{"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, v = do(http.MethodDelete, itemPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, v.Items)

	rec, _ = do(http.MethodDelete, "/cart", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func jsonID(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
