package product

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newRouter(repo *MockRepository) *httprouter.Router {
	h := NewHandler(NewService(repo, stubPricer{discounts: twentyOff}))
	r := httprouter.New()
	r.GET("/products", h.List)
	r.POST("/products", h.Create)
	r.GET("/products/:id", h.Get)
	r.PUT("/products/:id", h.Update)
	r.DELETE("/products/:id", h.Delete)
	r.POST("/products/:id/ratings", h.Rate)
	return r
}

func TestHandler_List_ParsesFilters(t *testing.T) {
	repo := new(MockRepository)
	router := newRouter(repo)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f ListFilter) bool {
		return *f.CategoryID == 2 &&
			*f.TagID == 5 &&
			*f.Search == "luna" &&
			*f.MinPrice == 10 &&
			*f.MaxPrice == 99.5 &&
			*f.Availability == AvailabilityBoth &&
			*f.InStock &&
			!f.IncludeInactive
	}), transport.Sort{Field: "p.rating_average", Desc: true}, transport.Pagination{Limit: 5, Page: 3}).
		Return([]*Product{{ID: 1, Name: "Luna", Price: 50}}, 11, nil)

	url := "/products?categoryId=2&tagId=5&search=luna&minPrice=10&maxPrice=99.5&availability=both&inStock=true&includeInactive=true&sort=rating&order=desc&limit=5&page=3"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"finalPrice":40`)
	assert.Contains(t, rec.Body.String(), `"total":11`)
}

func TestHandler_List_AdminIncludesInactive(t *testing.T) {
	repo := new(MockRepository)
	router := newRouter(repo)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f ListFilter) bool { return f.IncludeInactive }),
		mock.Anything, mock.Anything).Return([]*Product{}, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/products?includeInactive=true", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), 1, "a@b.c", utils.RoleAdmin))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestHandler_List_BadQuery(t *testing.T) {
	router := newRouter(new(MockRepository))

	for _, q := range []string{"categoryId=x", "minPrice=cheap", "inStock=perhaps", "availability=preorder", "minPrice=9&maxPrice=1"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestHandler_Get_HidesInactive(t *testing.T) {
	repo := new(MockRepository)
	router := newRouter(repo)

	repo.On("GetByID", mock.Anything, uint(3)).Return(&Product{ID: 3, IsActive: false}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/3", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/products/3", nil)
	req = req.WithContext(utils.SetUserContext(req.Context(), 1, "a@b.c", utils.RoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_CreateUpdateDelete(t *testing.T) {
	repo := new(MockRepository)
	router := newRouter(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(ErrProductNotFound)
	repo.On("Delete", mock.Anything, uint(4)).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products",
		strings.NewReader(`{"name":"Dije","price":30,"stock":2,"tagIds":[1]}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"dije"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/products/4",
		strings.NewReader(`{"name":"Dije","price":30}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/products/4", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_Rate(t *testing.T) {
	repo := new(MockRepository)
	router := newRouter(repo)

	repo.On("AddRating", mock.Anything, uint(3), uint(9), 5).
		Return(&RatingSummary{ProductID: 3, RatingAverage: 5, RatingCount: 1}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products/3/ratings", strings.NewReader(`{"rating":5}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/products/3/ratings", strings.NewReader(`{"rating":5}`))
	req = req.WithContext(utils.SetUserContext(req.Context(), 9, "u@x.y", "USER"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"productId":3,"ratingAverage":5,"ratingCount":1}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/products/3/ratings", strings.NewReader(`{"rating":9}`))
	req = req.WithContext(utils.SetUserContext(req.Context(), 9, "u@x.y", "USER"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
