package discount

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"joyeria-be/internal/transport"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, filter ListFilter, p transport.Pagination) ([]*Discount, int, error) {
	args := m.Called(ctx, filter, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Discount), args.Int(1), args.Error(2)
}

func (m *MockService) Get(ctx context.Context, id uint) (*Discount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Discount), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, in Input) (*Discount, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Discount), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, id uint, in Input) (*Discount, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Discount), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockService) Pricer(ctx context.Context) (*Pricer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Pricer), args.Error(1)
}

func newRouter(h *Handler) *httprouter.Router {
	r := httprouter.New()
	r.GET("/discounts", h.List)
	r.POST("/discounts", h.Create)
	r.GET("/discounts/:id", h.Get)
	r.PUT("/discounts/:id", h.Update)
	r.DELETE("/discounts/:id", h.Delete)
	return r
}

func TestHandler_List(t *testing.T) {
	svc := new(MockService)
	router := newRouter(NewHandler(svc))

	svc.On("List", mock.Anything, mock.MatchedBy(func(f ListFilter) bool {
		return f.Active != nil && *f.Active
	}), transport.Pagination{Limit: 5, Page: 1}).
		Return([]*Discount{{ID: 1, Name: "A"}}, 1, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/discounts?active=true&limit=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body transport.Page[Discount]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "A", body.Items[0].Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/discounts?active=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Create(t *testing.T) {
	svc := new(MockService)
	router := newRouter(NewHandler(svc))

	svc.On("Create", mock.Anything, mock.MatchedBy(func(in Input) bool {
		return in.Name == "Rings" && *in.Value == 20 && in.ProductIDs[0] == 3
	})).Return(&Discount{ID: 9, Name: "Rings"}, nil)

	body := `{"name":"Rings","type":"percentage","value":20,"productIds":[3]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/discounts", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":9`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/discounts", strings.NewReader(`{"name":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNumberOfCalls(t, "Create", 1)
}

func TestHandler_GetUpdateDelete(t *testing.T) {
	svc := new(MockService)
	router := newRouter(NewHandler(svc))

	svc.On("Get", mock.Anything, uint(4)).Return(nil, ErrDiscountNotFound)
	svc.On("Update", mock.Anything, uint(4), mock.Anything).Return(&Discount{ID: 4}, nil)
	svc.On("Delete", mock.Anything, uint(4)).Return(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/discounts/4", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"discount not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/discounts/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/discounts/4",
		strings.NewReader(`{"name":"x","type":"fixed","value":1,"isGeneric":true}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/discounts/4", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
