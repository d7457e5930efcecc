package favorite

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"joyeria-be/internal/apperr"
	"joyeria-be/internal/discount"
	"joyeria-be/internal/product"
	"joyeria-be/internal/transport"
	"joyeria-be/internal/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, userID uint, p transport.Pagination) ([]*Favorite, int, error) {
	args := m.Called(ctx, userID, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Favorite), args.Int(1), args.Error(2)
}

func (m *MockRepository) Add(ctx context.Context, userID, productID uint) (*Favorite, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Favorite), args.Error(1)
}

func (m *MockRepository) Remove(ctx context.Context, userID, productID uint) error {
	return m.Called(ctx, userID, productID).Error(0)
}

type catalog map[uint]*product.Product

func (c catalog) GetByIDs(_ context.Context, ids []uint) (map[uint]*product.Product, error) {
	out := map[uint]*product.Product{}
	for _, id := range ids {
		if p, ok := c[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

type pricerStub struct {
	discounts []discount.Discount
	err       error
}

func (p pricerStub) Pricer(context.Context) (*discount.Pricer, error) {
	if p.err != nil {
		return nil, p.err
	}
	return discount.NewPricer(p.discounts, time.Now()), nil
}

var page = transport.Pagination{Limit: 20, Page: 1}

func TestService_List_PricesProducts(t *testing.T) {
	repo := new(MockRepository)
	products := catalog{
		10: {ID: 10, Name: "Ring", Price: 100, IsActive: true},
		11: {ID: 11, Name: "Chain", Price: 50, IsActive: true},
	}
	prices := pricerStub{discounts: []discount.Discount{
		{ID: 1, Name: "All", Type: discount.TypeFixed, Value: 10, IsActive: true, IsGeneric: true},
	}}
	svc := NewService(repo, products, prices)

	repo.On("List", mock.Anything, uint(7), page).Return([]*Favorite{
		{UserID: 7, ProductID: 11},
		{UserID: 7, ProductID: 10},
		{UserID: 7, ProductID: 12},
	}, 3, nil)

	favs, total, err := svc.List(context.Background(), 7, page)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.NotNil(t, favs[0].Product)
	assert.Equal(t, 40.0, favs[0].Product.FinalPrice)
	assert.Equal(t, 90.0, favs[1].Product.FinalPrice)
	require.NotNil(t, favs[1].Product.Discount)
	assert.Nil(t, favs[2].Product)
}

func TestService_List_PricerDown(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, catalog{10: {ID: 10, Price: 100}}, pricerStub{err: errors.New("down")})
	repo.On("List", mock.Anything, uint(7), page).Return([]*Favorite{{ProductID: 10}}, 1, nil)

	favs, _, err := svc.List(context.Background(), 7, page)
	require.NoError(t, err)
	assert.Equal(t, 100.0, favs[0].Product.FinalPrice)
	assert.Nil(t, favs[0].Product.Discount)
}

func TestService_Add(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, catalog{}, nil)

	_, err := svc.Add(context.Background(), 7, AddInput{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	repo.On("Add", mock.Anything, uint(7), uint(99)).Return(nil, ErrProductNotFound)
	_, err = svc.Add(context.Background(), 7, AddInput{ProductID: 99})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestHandler(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandler(NewService(repo, catalog{}, nil))
	router := httprouter.New()
	router.GET("/favorites", h.List)
	router.POST("/favorites", h.Add)
	router.DELETE("/favorites/:productId", h.Remove)

	repo.On("List", mock.Anything, uint(7), page).Return([]*Favorite{}, 0, nil)
	repo.On("Add", mock.Anything, uint(7), uint(10)).Return(&Favorite{UserID: 7, ProductID: 10}, nil)
	repo.On("Remove", mock.Anything, uint(7), uint(10)).Return(nil)
	repo.On("Remove", mock.Anything, uint(7), uint(11)).Return(ErrFavoriteNotFound)

	tests := []struct {
		name, method, path, body string
		user                     bool
		want                     int
	}{
		{"Anonymous", http.MethodGet, "/favorites", "", false, http.StatusUnauthorized},
		{"List", http.MethodGet, "/favorites", "", true, http.StatusOK},
		{"Add", http.MethodPost, "/favorites", `{"productId":10}`, true, http.StatusCreated},
		{"AddInvalid", http.MethodPost, "/favorites", `{"productId":0}`, true, http.StatusBadRequest},
		{"Remove", http.MethodDelete, "/favorites/10", "", true, http.StatusNoContent},
		{"RemoveMissing", http.MethodDelete, "/favorites/11", "", true, http.StatusNotFound},
		{"RemoveBadID", http.MethodDelete, "/favorites/x", "", true, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.user {
				req = req.WithContext(utils.SetUserContext(req.Context(), 7, "u@x.y", "USER"))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}
