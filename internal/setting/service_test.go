package setting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"joyeria-be/internal/apperr"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, prefix string) ([]*Setting, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Setting), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, key string) (*Setting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Setting), args.Error(1)
}

func (m *MockRepository) Upsert(ctx context.Context, key, value string) (*Setting, error) {
	args := m.Called(ctx, key, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Setting), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func strPtr(s string) *string { return &s }

func TestService_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("NormalizesKey", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		repo.On("Upsert", ctx, "shop.phone", "555").Return(&Setting{Key: "shop.phone", Value: "555"}, nil)

		s, err := svc.Set(ctx, " Shop.Phone ", Input{Value: strPtr("555")})
		require.NoError(t, err)
		assert.Equal(t, "shop.phone", s.Key)
		repo.AssertExpectations(t)
	})

	t.Run("EmptyValueAllowed", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)
		repo.On("Upsert", ctx, "banner", "").Return(&Setting{Key: "banner"}, nil)

		_, err := svc.Set(ctx, "banner", Input{Value: strPtr("")})
		assert.NoError(t, err)
	})

	t.Run("Rejects", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		for _, key := range []string{"", "has space", "-leading", strings.Repeat("k", 101), "semi;colon"} {
			_, err := svc.Set(ctx, key, Input{Value: strPtr("v")})
			assert.ErrorIs(t, err, ErrInvalidKey, key)
		}

		_, err := svc.Set(ctx, "ok", Input{})
		assert.ErrorIs(t, err, apperr.ErrValidation)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Get", ctx, "shop_name").Return(&Setting{Key: "shop_name", Value: "Joyeria"}, nil)
	repo.On("Delete", ctx, "shop_name").Return(nil)

	s, err := svc.Get(ctx, "SHOP_NAME")
	require.NoError(t, err)
	assert.Equal(t, "Joyeria", s.Value)
	assert.NoError(t, svc.Delete(ctx, "shop_name"))

	_, err = svc.Get(ctx, "bad key")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestHandler(t *testing.T) {
	repo := new(MockRepository)
	h := NewHandler(NewService(repo))
	router := httprouter.New()
	router.GET("/settings", h.List)
	router.GET("/settings/:key", h.Get)
	router.PUT("/settings/:key", h.Put)
	router.DELETE("/settings/:key", h.Delete)

	repo.On("List", mock.Anything, "shop").Return([]*Setting{{Key: "shop_name", Value: "Joyeria"}}, nil)
	repo.On("Get", mock.Anything, "missing").Return(nil, ErrSettingNotFound)
	repo.On("Upsert", mock.Anything, "shop_name", "Joyas").Return(&Setting{Key: "shop_name", Value: "Joyas"}, nil)
	repo.On("Delete", mock.Anything, "shop_name").Return(nil)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/settings?prefix=shop", "", http.StatusOK},
		{http.MethodGet, "/settings/missing", "", http.StatusNotFound},
		{http.MethodPut, "/settings/shop_name", `{"value":"Joyas"}`, http.StatusOK},
		{http.MethodPut, "/settings/shop_name", `{}`, http.StatusBadRequest},
		{http.MethodPut, "/settings/bad%20key", `{"value":"x"}`, http.StatusBadRequest},
		{http.MethodDelete, "/settings/shop_name", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}
